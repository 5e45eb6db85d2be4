package shopadmin

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// CreateAccount lists a new marketplace account and audits the creation.
func (e *Engine) CreateAccount(ctx context.Context, name string) (*AccountRecord, error) {
	if e.accountStore == nil {
		return nil, ErrEngineNotReady
	}
	if name == "" {
		return nil, errors.New("account name must not be empty")
	}

	now := e.now()
	account := AccountRecord{
		AccountID: uuid.NewString(),
		Name:      name,
		Status:    AccountAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.accountStore.InsertAccount(ctx, account); err != nil {
		e.recordAudit(ctx, ActionAccountCreated, "", EntityAccount, account.AccountID, false, err, func() map[string]string {
			return map[string]string{
				"name": name,
			}
		})
		return nil, err
	}

	e.metricInc(MetricAccountCreated)
	e.recordAudit(ctx, ActionAccountCreated, "", EntityAccount, account.AccountID, true, nil, func() map[string]string {
		return map[string]string{
			"name": name,
		}
	})

	return &account, nil
}

// GetAccount fetches one account record.
func (e *Engine) GetAccount(ctx context.Context, accountID string) (AccountRecord, error) {
	if e.accountStore == nil {
		return AccountRecord{}, ErrEngineNotReady
	}
	return e.accountStore.GetAccount(ctx, accountID)
}

// UpdateAccountStatus moves an account to a new lifecycle state and audits
// the transition with the old and new values.
func (e *Engine) UpdateAccountStatus(ctx context.Context, accountID string, status AccountStatus) error {
	if e.accountStore == nil {
		return ErrEngineNotReady
	}

	account, err := e.accountStore.GetAccount(ctx, accountID)
	if err != nil {
		e.recordAudit(ctx, ActionAccountUpdated, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	if err := e.accountStore.UpdateAccountStatus(ctx, accountID, status, e.now()); err != nil {
		e.recordAudit(ctx, ActionAccountUpdated, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	e.metricInc(MetricAccountUpdated)
	e.recordAudit(ctx, ActionAccountUpdated, "", EntityAccount, accountID, true, nil, func() map[string]string {
		return map[string]string{
			"field":      "status",
			"old_status": strconv.Itoa(int(account.Status)),
			"new_status": strconv.Itoa(int(status)),
		}
	})

	return nil
}

// DeleteAccount removes an account and its stored credentials. Credential
// cleanup failures do not block the account delete; they are logged and the
// blob becomes unreachable once the account row is gone.
func (e *Engine) DeleteAccount(ctx context.Context, accountID string) error {
	if e.accountStore == nil {
		return ErrEngineNotReady
	}

	if err := e.accountStore.DeleteAccount(ctx, accountID); err != nil {
		e.recordAudit(ctx, ActionAccountDeleted, "", EntityAccount, accountID, false, err, nil)
		return err
	}

	if e.credentialStore != nil {
		if err := e.credentialStore.DeleteCredentials(ctx, accountID); err != nil && !errors.Is(err, ErrCredentialsNotFound) {
			e.logger.Warn("credential cleanup after account delete failed")
		}
	}

	e.metricInc(MetricAccountDeleted)
	e.recordAudit(ctx, ActionAccountDeleted, "", EntityAccount, accountID, true, nil, nil)
	return nil
}
