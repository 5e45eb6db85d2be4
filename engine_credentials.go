package shopadmin

import (
	"context"
	"fmt"

	"github.com/miaodi2002/shopadmin/secretbox"
	"go.uber.org/zap"
)

// UpdateAccountCredentials replaces the stored credential bundle for an
// account. The bundle is sealed under the master key before it reaches the
// store; the audit event carries field names and a redacted key-id preview,
// never the values.
func (e *Engine) UpdateAccountCredentials(ctx context.Context, accountID string, fields secretbox.Bundle) error {
	if e.credentialStore == nil || e.accountStore == nil {
		return ErrEngineNotReady
	}

	if _, err := e.accountStore.GetAccount(ctx, accountID); err != nil {
		e.recordAudit(ctx, ActionCredentialsUpdated, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	secret, err := secretbox.EncryptBundle(fields, e.config.MasterKey)
	if err != nil {
		e.logger.Error("credential bundle encryption failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		e.recordAudit(ctx, ActionCredentialsUpdated, "", EntityAccount, accountID, false, ErrCredentialsUnavailable, nil)
		return fmt.Errorf("%w: encrypt", ErrCredentialsUnavailable)
	}

	blob, err := secret.Marshal()
	if err != nil {
		return fmt.Errorf("%w: marshal", ErrCredentialsUnavailable)
	}

	if err := e.credentialStore.UpsertCredentials(ctx, accountID, blob, e.now()); err != nil {
		e.recordAudit(ctx, ActionCredentialsUpdated, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	e.metricInc(MetricCredentialsEncrypted)
	e.recordAudit(ctx, ActionCredentialsUpdated, "", EntityAccount, accountID, true, nil, func() map[string]string {
		metadata := map[string]string{
			"fields": fields.JoinedFieldNames(),
		}
		if keyID, ok := fields["access_key_id"]; ok {
			metadata["access_key_id"] = secretbox.MaskPreview(keyID)
		}
		return metadata
	})

	return nil
}

// RevealAccountCredentials decrypts and returns the stored bundle. Every
// read of plaintext credentials is itself audited. Decryption failures are
// logged with the real cause and surfaced as the generic
// [ErrCredentialsUnavailable].
func (e *Engine) RevealAccountCredentials(ctx context.Context, accountID string) (secretbox.Bundle, error) {
	if e.credentialStore == nil {
		return nil, ErrEngineNotReady
	}

	blob, err := e.credentialStore.GetCredentials(ctx, accountID)
	if err != nil {
		e.recordAudit(ctx, ActionCredentialsViewed, "", EntityAccount, accountID, false, err, nil)
		return nil, err
	}

	secret, err := secretbox.Unmarshal(blob)
	if err == nil {
		var fields secretbox.Bundle
		fields, err = secretbox.DecryptBundle(secret, e.config.MasterKey)
		if err == nil {
			e.metricInc(MetricCredentialsDecrypted)
			e.recordAudit(ctx, ActionCredentialsViewed, "", EntityAccount, accountID, true, nil, func() map[string]string {
				return map[string]string{
					"fields": fields.JoinedFieldNames(),
				}
			})
			return fields, nil
		}
	}

	// Authentic-but-unparseable and tampered blobs both land here. The
	// distinction matters to operators, not to callers.
	e.logger.Error("stored credentials unreadable",
		zap.String("account_id", accountID),
		zap.Error(err),
	)
	e.recordAudit(ctx, ActionCredentialsViewed, "", EntityAccount, accountID, false, ErrCredentialsUnavailable, nil)
	return nil, ErrCredentialsUnavailable
}

// DeleteAccountCredentials removes the stored bundle for an account.
func (e *Engine) DeleteAccountCredentials(ctx context.Context, accountID string) error {
	if e.credentialStore == nil {
		return ErrEngineNotReady
	}

	if err := e.credentialStore.DeleteCredentials(ctx, accountID); err != nil {
		e.recordAudit(ctx, ActionCredentialsDeleted, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	e.metricInc(MetricCredentialsDeleted)
	e.recordAudit(ctx, ActionCredentialsDeleted, "", EntityAccount, accountID, true, nil, nil)
	return nil
}
