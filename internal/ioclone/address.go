package ioclone

import (
	"context"
	"fmt"

	"github.com/getyour/gyadmin/internal/ioschema"
	"github.com/getyour/gyadmin/pkg/db"
)

// resolveAddress finds or creates the target-store address matching the
// source address's content hash and returns the target-local id.
//
// A miss copies the source row into the target and commits that insert
// immediately, independent of the enclosing clone's final commit, so
// later foreign-key references within the same clone observe it.
// Repeated calls with the same hash are idempotent.
func resolveAddress(
	ctx context.Context, src, tgt db.Handle, srcAddrID int64,
) (int64, error) {
	hash, err := addressHash(ctx, src, srcAddrID)
	if err != nil {
		return 0, err
	}

	rows, err := tgt.Query(ctx,
		fmt.Sprintf(
			`SELECT id FROM app_addressrd WHERE address_sha1 = %s`,
			tgt.Placeholder(1)),
		hash)
	if err != nil {
		return 0, AddressError(srcAddrID, err)
	}
	switch len(rows) {
	case 1:
		return asInt64(rows[0][0])
	case 0:
		// fall through to the copy
	default:
		return 0, AddressError(srcAddrID,
			fmt.Errorf("hash %s maps to %d target rows", hash, len(rows)))
	}

	cols, err := ioschema.Columns(ctx, src, "app_addressrd")
	if err != nil {
		return 0, AddressError(srcAddrID, err)
	}
	srcRows, err := src.Query(ctx,
		fmt.Sprintf(`SELECT "%s" FROM app_addressrd WHERE id = %s`,
			joinIdents(cols), src.Placeholder(1)),
		srcAddrID)
	if err != nil {
		return 0, AddressError(srcAddrID, err)
	}
	if len(srcRows) != 1 {
		return 0, AddressError(srcAddrID,
			fmt.Errorf("%d source rows for address id", len(srcRows)))
	}

	vals := normalizeRow(srcRows[0], tgt.Kind())
	id, err := tgt.InsertReturningID(ctx, "app_addressrd", cols, vals)
	if err != nil {
		return 0, AddressError(srcAddrID, err)
	}
	if err := tgt.Commit(ctx); err != nil {
		return 0, AddressError(srcAddrID, err)
	}
	return id, nil
}

// addressHash looks up the content hash of a source address by id.
func addressHash(
	ctx context.Context, src db.Handle, srcAddrID int64,
) (string, error) {
	rows, err := src.Query(ctx,
		fmt.Sprintf(
			`SELECT address_sha1 FROM app_addressrd WHERE id = %s`,
			src.Placeholder(1)),
		srcAddrID)
	if err != nil {
		return "", AddressError(srcAddrID, err)
	}
	if len(rows) != 1 {
		return "", AddressError(srcAddrID,
			fmt.Errorf("%d rows for source address id", len(rows)))
	}
	hash, ok := rows[0][0].(string)
	if !ok || hash == "" {
		return "", AddressError(srcAddrID,
			fmt.Errorf("source address has no content hash"))
	}
	return hash, nil
}
