package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionCurrent = 1

// Encode serializes a session into its compact binary form:
// [version][adminID length][adminID][issuedAt][expiresAt], integers
// big-endian. The token is the Redis key and is not part of the blob.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if len(s.AdminID) == 0 {
		return nil, errors.New("adminID empty")
	}
	if len(s.AdminID) > 255 {
		return nil, errors.New("adminID too long")
	}
	buf.WriteByte(byte(len(s.AdminID)))
	buf.WriteString(s.AdminID)

	if err := binary.Write(&buf, binary.BigEndian, s.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode]. The caller fills Token.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	adminLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if adminLen == 0 {
		return nil, errors.New("adminID empty")
	}
	adminID := make([]byte, adminLen)
	if _, err := io.ReadFull(reader, adminID); err != nil {
		return nil, err
	}
	s.AdminID = string(adminID)

	if err := binary.Read(reader, binary.BigEndian, &s.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes after session blob")
	}

	return s, nil
}
