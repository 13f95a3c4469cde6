// Package ioclone implements the cross-environment record cloning
// engine: it walks the fixed table graph, rewrites identity-bearing
// fields, resolves shared addresses by content hash and writes the
// record set into the target store under commit/rollback control of
// two independent connections.
package ioclone

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getyour/gyadmin/internal/ioschema"
	"github.com/getyour/gyadmin/pkg/clone"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
)

// PhonePlaceholder replaces the source user's phone number on every
// clone so the app cannot text or call a real person.
const PhonePlaceholder = "+13035551234"

type cloner struct {
	cfg      *config.Config
	provider db.Provider

	// confirm asks the operator a yes/no question in interactive mode.
	// Nil means every prompt is answered "no".
	confirm func(question string) bool
}

// New creates the cloning engine. The confirm callback handles
// interactive overwrite prompts; pass nil for strictly non-interactive
// behavior.
func New(
	cfg *config.Config, provider db.Provider,
	confirm func(question string) bool,
) clone.Cloner {
	return &cloner{cfg: cfg, provider: provider, confirm: confirm}
}

func (c *cloner) Clone(
	ctx context.Context, req clone.Request,
) (clone.Outcome, error) {
	var res clone.Outcome

	if req.SourceProfile == req.TargetProfile {
		return res, PolicyError(req.SourceProfile, req.TargetProfile,
			fmt.Errorf("source and target are the same store"))
	}
	src, tgt, openedHere, err := c.handles(ctx, req)
	if err != nil {
		return res, err
	}
	closeHandles := func() {
		// Externally supplied handles stay open for the caller.
		if openedHere {
			_ = c.provider.CloseAll(ctx)
		}
	}
	defer closeHandles()

	userID, err := c.sourceUserID(ctx, src, req.SourceEmail)
	if err != nil {
		return res, err
	}

	exists, existingEmail, err := c.targetUser(ctx, tgt, userID)
	if err != nil {
		return res, err
	}

	overwrite := false
	if exists {
		overwrite, err = c.overwritePolicy(req, src, tgt, existingEmail)
		if err != nil {
			return res, err
		}
	}
	newIdentity := exists && !overwrite

	password, err := c.templatePassword(ctx, src, tgt)
	if err != nil {
		return res, err
	}

	if overwrite {
		if err := c.deleteRecordSet(ctx, tgt, userID); err != nil {
			_ = tgt.Rollback(ctx)
			return res, err
		}
		// Deletions commit before any insert. A failure during the
		// rewrite leaves the user deleted, never half-restored.
		if err := tgt.Commit(ctx); err != nil {
			return res, err
		}
	}

	targetID, err := c.transfer(ctx, src, tgt, transferParams{
		sourceID:    userID,
		newEmail:    req.TargetEmail,
		password:    password,
		newIdentity: newIdentity,
	})
	if err != nil {
		_ = tgt.Rollback(ctx)
		_ = src.Rollback(ctx)
		return res, err
	}

	if err := tgt.Commit(ctx); err != nil {
		_ = src.Rollback(ctx)
		return res, err
	}
	// The source saw only reads; end its implicit transaction.
	_ = src.Rollback(ctx)

	res = clone.Outcome{
		UserID:       targetID,
		Email:        req.TargetEmail,
		PasswordNote: c.cfg.Clone.TemplateAccount,
		NewIdentity:  newIdentity,
		Overwritten:  overwrite,
	}
	slog.Info("User cloned",
		"source", src.ProfileName(),
		"target", tgt.ProfileName(),
		"userID", targetID,
		"newIdentity", newIdentity,
		"overwritten", overwrite,
	)
	return res, nil
}

// handles returns the source and target handles, opening them through
// the provider unless the request supplies pre-opened ones. A request
// LocalPath is threaded to the provider per call and never written back
// into the shared configuration.
func (c *cloner) handles(
	ctx context.Context, req clone.Request,
) (src, tgt db.Handle, openedHere bool, err error) {
	src = req.SourceHandle
	tgt = req.TargetHandle

	if src == nil {
		src, err = c.provider.OpenAt(ctx, req.SourceProfile, req.LocalPath)
		if err != nil {
			return nil, nil, false, err
		}
		openedHere = true
	}
	if tgt == nil {
		tgt, err = c.provider.OpenAt(ctx, req.TargetProfile, req.LocalPath)
		if err != nil {
			return nil, nil, false, err
		}
		openedHere = true
	}
	return src, tgt, openedHere, nil
}

// sourceUserID resolves the user by case-insensitive email. Exactly one
// match is required.
func (c *cloner) sourceUserID(
	ctx context.Context, src db.Handle, email string,
) (int64, error) {
	rows, err := src.Query(ctx,
		fmt.Sprintf(
			`SELECT id FROM app_user WHERE lower(email) = %s`,
			src.Placeholder(1)),
		strings.ToLower(email))
	if err != nil {
		return 0, err
	}
	switch len(rows) {
	case 0:
		return 0, UserNotFoundError(email, src.ProfileName())
	case 1:
		return asInt64(rows[0][0])
	default:
		return 0, AmbiguousUserError(email, src.ProfileName(), len(rows))
	}
}

// targetUser reports whether the identifier is taken in the target and
// under which email.
func (c *cloner) targetUser(
	ctx context.Context, tgt db.Handle, userID int64,
) (bool, string, error) {
	rows, err := tgt.Query(ctx,
		fmt.Sprintf(`SELECT email FROM app_user WHERE id = %s`,
			tgt.Placeholder(1)),
		userID)
	if err != nil {
		return false, "", err
	}
	if len(rows) == 0 {
		return false, "", nil
	}
	if len(rows) > 1 {
		return false, "", AmbiguousUserError(
			fmt.Sprintf("id %d", userID), tgt.ProfileName(), len(rows))
	}
	email, _ := rows[0][0].(string)
	return true, email, nil
}

// overwritePolicy decides between overwrite and new-identity when the
// identifier is already taken. Overwrite is never allowed into a
// production-class target or between same-class environments; beyond
// that it needs the explicit flag, or operator confirmation in
// interactive mode.
func (c *cloner) overwritePolicy(
	req clone.Request, src, tgt db.Handle, existingEmail string,
) (bool, error) {
	allowed := src.Env() != tgt.Env() && tgt.Env() != db.EnvProd

	if !req.Interactive {
		return allowed && req.Overwrite, nil
	}
	if !allowed {
		return false, nil
	}

	ask := c.confirm
	if ask == nil {
		return false, nil
	}
	q := fmt.Sprintf(
		"User exists in %s (under %s). Okay to overwrite?",
		tgt.ProfileName(), existingEmail)
	if ask(q) {
		return true, nil
	}
	if ask("Continue with a new identity instead?") {
		return false, nil
	}
	return false, CancelledError("declined by operator")
}

// templatePassword fetches the password hash of the configured template
// account from a dev-class store. When neither connection is dev-class
// a short-lived auxiliary connection to the default dev profile serves
// the lookup.
func (c *cloner) templatePassword(
	ctx context.Context, src, tgt db.Handle,
) (string, error) {
	account := c.cfg.Clone.TemplateAccount
	if account == "" {
		return "", TemplatePasswordError("",
			fmt.Errorf("no template account is configured"))
	}

	var h db.Handle
	switch {
	case tgt.Env() == db.EnvDev:
		h = tgt
	case src.Env() == db.EnvDev:
		h = src
	default:
		aux, err := c.provider.Open(ctx, c.cfg.Clone.DevProfile)
		if err != nil {
			return "", TemplatePasswordError(account, err)
		}
		// The auxiliary connection serves this one lookup.
		defer func() {
			_ = c.provider.Close(ctx, c.cfg.Clone.DevProfile)
		}()
		h = aux
	}

	rows, err := h.Query(ctx,
		fmt.Sprintf(
			`SELECT password FROM app_user WHERE lower(email) = %s`,
			h.Placeholder(1)),
		strings.ToLower(account))
	if err != nil {
		return "", TemplatePasswordError(account, err)
	}
	if len(rows) != 1 {
		return "", TemplatePasswordError(account,
			fmt.Errorf("%d rows for the template account on %s",
				len(rows), h.ProfileName()))
	}
	password, ok := rows[0][0].(string)
	if !ok || password == "" {
		return "", TemplatePasswordError(account,
			fmt.Errorf("template account has no usable password"))
	}
	return password, nil
}

// deleteRecordSet removes every row of the user's record set from the
// target, walking the table list in reverse so foreign keys never
// dangle mid-delete.
func (c *cloner) deleteRecordSet(
	ctx context.Context, tgt db.Handle, userID int64,
) error {
	for i := len(clone.Tables) - 1; i >= 0; i-- {
		table := clone.Tables[i]
		err := tgt.Exec(ctx,
			fmt.Sprintf(`DELETE FROM "%s" WHERE "%s" = %s`,
				table, clone.OwnerField(table), tgt.Placeholder(1)),
			userID)
		if err != nil {
			return TransferError(table, err)
		}
	}
	return nil
}

type transferParams struct {
	sourceID    int64
	newEmail    string
	password    string
	newIdentity bool
}

// transfer copies the record set table by table and returns the target
// user identifier. On the new-identity path the identifier comes from
// the target's user insert and is threaded into every dependent row.
func (c *cloner) transfer(
	ctx context.Context, src, tgt db.Handle, p transferParams,
) (int64, error) {
	targetID := p.sourceID

	for _, table := range clone.Tables {
		cols, err := ioschema.Columns(ctx, src, table)
		if err != nil {
			return 0, TransferError(table, err)
		}

		ownerField := clone.OwnerField(table)
		rows, err := src.Query(ctx,
			fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "%s" = %s`,
				strings.Join(cols, `", "`), table, ownerField,
				src.Placeholder(1)),
			p.sourceID)
		if err != nil {
			return 0, TransferError(table, err)
		}
		if len(rows) == 0 {
			// Common for history tables; not an error.
			slog.Debug("No rows to clone", "table", table)
			continue
		}

		switch table {
		case clone.UserTable:
			if len(rows) > 1 {
				return 0, AmbiguousUserError(
					fmt.Sprintf("id %d", p.sourceID),
					src.ProfileName(), len(rows))
			}
			targetID, err = c.insertUser(ctx, tgt, cols, rows[0], p)
			if err != nil {
				return 0, err
			}
			continue

		case "app_address":
			if len(rows) > 1 {
				return 0, TransferError(table,
					fmt.Errorf("%d address rows where one is required",
						len(rows)))
			}
			if err = c.rewriteAddressRefs(
				ctx, src, tgt, cols, rows[0],
			); err != nil {
				return 0, err
			}
		}

		for _, row := range rows {
			if idx := index(cols, ownerField); idx >= 0 {
				row[idx] = targetID
			}
			vals := normalizeRow(row, tgt.Kind())
			err = tgt.Exec(ctx, insertStatement(table, cols, tgt), vals...)
			if err != nil {
				return 0, TransferError(table, err)
			}
		}
	}
	return targetID, nil
}

// insertUser writes the rewritten user row. Identity reuse inserts the
// source identifier explicitly; a new-identity clone lets the target
// assign one.
func (c *cloner) insertUser(
	ctx context.Context, tgt db.Handle,
	cols []string, row []any, p transferParams,
) (int64, error) {
	rewriteUserRow(cols, row, userRewrite{
		email:         p.newEmail,
		password:      p.password,
		phone:         PhonePlaceholder,
		forceArchived: tgt.Env() == db.EnvProd,
	})
	vals := normalizeRow(row, tgt.Kind())

	if p.newIdentity {
		id, err := tgt.InsertReturningID(ctx, clone.UserTable, cols, vals)
		if err != nil {
			return 0, TransferError(clone.UserTable, err)
		}
		return id, nil
	}

	idCols := append(append([]string{}, cols...), "id")
	idVals := append(append([]any{}, vals...), p.sourceID)
	err := tgt.Exec(ctx,
		insertStatement(clone.UserTable, idCols, tgt), idVals...)
	if err != nil {
		return 0, TransferError(clone.UserTable, err)
	}
	return p.sourceID, nil
}

// rewriteAddressRefs replaces the two address-reference fields with
// target-local identifiers resolved through the deduplication resolver.
func (c *cloner) rewriteAddressRefs(
	ctx context.Context, src, tgt db.Handle, cols []string, row []any,
) error {
	for _, field := range clone.AddressRefFields {
		idx := index(cols, field)
		if idx < 0 {
			return TransferError("app_address",
				fmt.Errorf("column %s is missing", field))
		}
		srcAddrID, err := asInt64(row[idx])
		if err != nil {
			return TransferError("app_address", err)
		}
		tgtAddrID, err := resolveAddress(ctx, src, tgt, srcAddrID)
		if err != nil {
			return err
		}
		row[idx] = tgtAddrID
	}
	return nil
}

func insertStatement(table string, cols []string, h db.Handle) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = h.Placeholder(i + 1)
	}
	return fmt.Sprintf(
		`INSERT INTO "%s" ("%s") VALUES (%s)`,
		table,
		strings.Join(cols, `", "`),
		strings.Join(placeholders, ", "),
	)
}

func index(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
