// Package password provides argon2id hashing and verification for
// administrator passwords, using the PHC string format for storage.
package password
