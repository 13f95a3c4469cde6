package ioclone_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getyour/gyadmin/internal/ioclone"
	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/internal/iotesting"
	"github.com/getyour/gyadmin/pkg/clone"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	templateAccount = "clone-template@example.org"
	templateHash    = "pbkdf2_sha256$template-hash"
	sourceHash      = "pbkdf2_sha256$source-secret"
)

// fixture wires a dev-class source store and a local-class target store
// into a clone engine. The template account lives in the source, which
// is dev-class, so no auxiliary connection is needed.
type fixture struct {
	src, tgt db.Handle
	cfg      *config.Config
	cloner   clone.Cloner
	userID   int64
	addrID   int64
}

func newFixture(t *testing.T, confirm func(string) bool) *fixture {
	t.Helper()

	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	addrID := iotesting.SeedAddressRD(t, src,
		"123 Main St", "Fort Collins", "CO", "80521")
	userID := iotesting.SeedUser(t, src,
		"applicant@example.org", sourceHash, addrID)
	iotesting.SeedUser(t, src, templateAccount, templateHash, addrID)

	cfg := config.New()
	cfg.Clone.TemplateAccount = templateAccount

	return &fixture{
		src:    src,
		tgt:    tgt,
		cfg:    cfg,
		cloner: ioclone.New(cfg, iodb.NewProvider(cfg), confirm),
		userID: userID,
		addrID: addrID,
	}
}

func (f *fixture) request() clone.Request {
	return clone.Request{
		SourceProfile: f.src.ProfileName(),
		TargetProfile: f.tgt.ProfileName(),
		SourceEmail:   "applicant@example.org",
		TargetEmail:   "cloned@example.org",
		SourceHandle:  f.src,
		TargetHandle:  f.tgt,
	}
}

func queryOne(t *testing.T, h db.Handle, sql string, args ...any) []any {
	t.Helper()
	rows, err := h.Query(context.Background(), sql, args...)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestClone_EmptyTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	out, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	assert.Equal(t, f.userID, out.UserID,
		"fresh target reuses the source identifier")
	assert.False(t, out.NewIdentity)
	assert.False(t, out.Overwritten)
	assert.Equal(t, templateAccount, out.PasswordNote)

	row := queryOne(t, f.tgt,
		`SELECT email, password, phone_number, is_archived
		FROM app_user WHERE id = ?`, out.UserID)
	assert.Equal(t, "cloned@example.org", row[0])
	assert.Equal(t, templateHash, row[1],
		"password comes from the template account, never the source")
	assert.Equal(t, ioclone.PhonePlaceholder, row[2])
	assert.Equal(t, int64(0), row[3],
		"archived flag is not forced outside production targets")

	for _, table := range []string{
		"app_address", "app_household", "app_householdmembers",
		"app_eligibilityprogram", "app_iqprogram", "app_userhist",
	} {
		n := iotesting.CountRows(t, f.tgt, table, "user_id = ?", out.UserID)
		assert.Equal(t, int64(1), n, table)
	}
}

// TestClone_AddressCreatedAndReferenced verifies a miss on the address
// hash copies the address and rewrites both reference fields to the
// target-local id.
func TestClone_AddressCreatedAndReferenced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	out, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	hash := iotesting.AddressSHA1(
		"123 Main St", "Fort Collins", "CO", "80521")
	addrRow := queryOne(t, f.tgt,
		`SELECT id FROM app_addressrd WHERE address_sha1 = ?`, hash)
	tgtAddrID := addrRow[0].(int64)

	refs := queryOne(t, f.tgt,
		`SELECT eligibility_address_id, mailing_address_id
		FROM app_address WHERE user_id = ?`, out.UserID)
	assert.Equal(t, tgtAddrID, refs[0])
	assert.Equal(t, tgtAddrID, refs[1])
}

// TestClone_AddressDedup verifies an existing target hash is reused and
// no duplicate address row appears.
func TestClone_AddressDedup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// The same address content already lives in the target under its
	// own identifier.
	existingID := iotesting.SeedAddressRD(t, f.tgt,
		"123 Main St", "Fort Collins", "CO", "80521")

	out, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	hash := iotesting.AddressSHA1(
		"123 Main St", "Fort Collins", "CO", "80521")
	n := iotesting.CountRows(t, f.tgt,
		"app_addressrd", "address_sha1 = ?", hash)
	assert.Equal(t, int64(1), n, "hash stays unique in the target")

	refs := queryOne(t, f.tgt,
		`SELECT eligibility_address_id FROM app_address WHERE user_id = ?`,
		out.UserID)
	assert.Equal(t, existingID, refs[0])
}

// TestClone_ExistingUserNewIdentity verifies the non-destructive
// default: an occupied identifier is left alone and the clone receives
// a store-assigned one.
func TestClone_ExistingUserNewIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	occupiedAddr := iotesting.SeedAddressRD(t, f.tgt,
		"9 Other Rd", "Loveland", "CO", "80537")
	occupiedID := iotesting.SeedUser(t, f.tgt,
		"resident@example.org", "resident-hash", occupiedAddr)
	require.Equal(t, f.userID, occupiedID,
		"fixture must occupy the source identifier in the target")

	out, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	assert.True(t, out.NewIdentity)
	assert.NotEqual(t, f.userID, out.UserID)

	// The occupant is untouched.
	row := queryOne(t, f.tgt,
		`SELECT email, password FROM app_user WHERE id = ?`, occupiedID)
	assert.Equal(t, "resident@example.org", row[0])
	assert.Equal(t, "resident-hash", row[1])

	// Dependent rows follow the new identifier.
	n := iotesting.CountRows(t, f.tgt,
		"app_household", "user_id = ?", out.UserID)
	assert.Equal(t, int64(1), n)
	n = iotesting.CountRows(t, f.tgt,
		"app_userhist", "user_id = ?", out.UserID)
	assert.Equal(t, int64(1), n)
}

// TestClone_OverwriteConfirmed verifies a confirmed overwrite replaces
// the record set under the same identifier and leaves nothing from the
// previous occupant.
func TestClone_OverwriteConfirmed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(string) bool { return true })

	occupiedAddr := iotesting.SeedAddressRD(t, f.tgt,
		"9 Other Rd", "Loveland", "CO", "80537")
	iotesting.SeedUser(t, f.tgt,
		"resident@example.org", "resident-hash", occupiedAddr)

	req := f.request()
	req.Interactive = true
	out, err := f.cloner.Clone(ctx, req)
	require.NoError(t, err)

	assert.True(t, out.Overwritten)
	assert.Equal(t, f.userID, out.UserID)

	row := queryOne(t, f.tgt,
		`SELECT email FROM app_user WHERE id = ?`, out.UserID)
	assert.Equal(t, "cloned@example.org", row[0])

	// Exactly one record set remains under the identifier.
	for _, table := range []string{
		"app_address", "app_household", "app_householdmembers",
	} {
		n := iotesting.CountRows(t, f.tgt, table, "user_id = ?", out.UserID)
		assert.Equal(t, int64(1), n, table)
	}
	n := iotesting.CountRows(t, f.tgt, "app_user", "")
	assert.Equal(t, int64(1), n)
}

// TestClone_OverwriteDeclinedFallsBack verifies declining the overwrite
// prompt but accepting a new identity keeps the occupant intact.
func TestClone_OverwriteDeclinedFallsBack(t *testing.T) {
	ctx := context.Background()
	answers := []bool{false, true}
	f := newFixture(t, func(string) bool {
		a := answers[0]
		answers = answers[1:]
		return a
	})

	occupiedAddr := iotesting.SeedAddressRD(t, f.tgt,
		"9 Other Rd", "Loveland", "CO", "80537")
	occupiedID := iotesting.SeedUser(t, f.tgt,
		"resident@example.org", "resident-hash", occupiedAddr)

	req := f.request()
	req.Interactive = true
	out, err := f.cloner.Clone(ctx, req)
	require.NoError(t, err)

	assert.True(t, out.NewIdentity)
	assert.NotEqual(t, occupiedID, out.UserID)
}

// TestClone_BothPromptsDeclined verifies full refusal cancels the clone
// with no mutation.
func TestClone_BothPromptsDeclined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(string) bool { return false })

	occupiedAddr := iotesting.SeedAddressRD(t, f.tgt,
		"9 Other Rd", "Loveland", "CO", "80537")
	iotesting.SeedUser(t, f.tgt,
		"resident@example.org", "resident-hash", occupiedAddr)

	req := f.request()
	req.Interactive = true
	_, err := f.cloner.Clone(ctx, req)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CloneCancelledError, gnErr.Code)

	n := iotesting.CountRows(t, f.tgt, "app_user", "")
	assert.Equal(t, int64(1), n, "no mutation after cancellation")
}

// TestClone_ProdTargetNeverOverwrites verifies the overwrite flag is
// ignored for production-class targets and the archived flag is forced.
func TestClone_ProdTargetNeverOverwrites(t *testing.T) {
	ctx := context.Background()

	src := iotesting.OpenStore(t, db.EnvDev)
	tgt := iotesting.OpenStore(t, db.EnvProd)

	addrID := iotesting.SeedAddressRD(t, src,
		"123 Main St", "Fort Collins", "CO", "80521")
	userID := iotesting.SeedUser(t, src,
		"applicant@example.org", sourceHash, addrID)
	iotesting.SeedUser(t, src, templateAccount, templateHash, addrID)

	tgtAddr := iotesting.SeedAddressRD(t, tgt,
		"9 Other Rd", "Loveland", "CO", "80537")
	iotesting.SeedUser(t, tgt,
		"resident@example.org", "resident-hash", tgtAddr)

	cfg := config.New()
	cfg.Clone.TemplateAccount = templateAccount
	cloner := ioclone.New(cfg, iodb.NewProvider(cfg), nil)

	out, err := cloner.Clone(ctx, clone.Request{
		SourceProfile: src.ProfileName(),
		TargetProfile: tgt.ProfileName(),
		SourceEmail:   "applicant@example.org",
		TargetEmail:   "cloned@example.org",
		Overwrite:     true,
		SourceHandle:  src,
		TargetHandle:  tgt,
	})
	require.NoError(t, err)

	assert.True(t, out.NewIdentity,
		"production target takes the non-destructive path")
	assert.NotEqual(t, userID, out.UserID)

	row := queryOne(t, tgt,
		`SELECT email FROM app_user WHERE id = ?`, userID)
	assert.Equal(t, "resident@example.org", row[0],
		"existing production row is untouched")

	cloneRow := queryOne(t, tgt,
		`SELECT is_archived FROM app_user WHERE id = ?`, out.UserID)
	assert.Equal(t, int64(1), cloneRow[0],
		"clones into production are always archived")
}

// TestClone_EmptyHistTablesSkipped verifies tables with no source rows
// are skipped without error.
func TestClone_EmptyHistTablesSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	out, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	// The fixture seeds app_userhist only; the other history tables
	// have no source rows and must stay empty in the target.
	for _, table := range []string{
		"app_addresshist", "app_householdhist",
		"app_householdmembershist", "app_eligibilityprogramhist",
		"app_iqprogramhist",
	} {
		n := iotesting.CountRows(t, f.tgt, table, "user_id = ?", out.UserID)
		assert.Zero(t, n, table)
	}
}

func TestClone_UserNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	req := f.request()
	req.SourceEmail = "nobody@example.org"
	_, err := f.cloner.Clone(ctx, req)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CloneUserNotFoundError, gnErr.Code)
}

// TestClone_EmailLookupIsCaseInsensitive verifies the source user is
// found regardless of email casing.
func TestClone_EmailLookupIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	req := f.request()
	req.SourceEmail = "APPLICANT@Example.ORG"
	out, err := f.cloner.Clone(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, f.userID, out.UserID)
}

func TestClone_SameProfileRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	req := f.request()
	req.TargetProfile = req.SourceProfile
	_, err := f.cloner.Clone(ctx, req)
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ClonePolicyError, gnErr.Code)
}

func TestClone_MissingTemplateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.cfg.Clone.TemplateAccount = "absent@example.org"

	_, err := f.cloner.Clone(ctx, f.request())
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CloneTemplatePasswordError, gnErr.Code)

	n := iotesting.CountRows(t, f.tgt, "app_user", "")
	assert.Zero(t, n, "failure before transfer leaves the target empty")
}

// TestClone_ExternalHandlesStayOpen verifies pre-opened handles remain
// usable after the clone returns.
func TestClone_ExternalHandlesStayOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	_, err = f.src.Query(ctx, `SELECT count(*) FROM app_user`)
	assert.NoError(t, err)
	_, err = f.tgt.Query(ctx, `SELECT count(*) FROM app_user`)
	assert.NoError(t, err)
}

// TestClone_TransferFailureRollsBack verifies a failure partway through
// the table walk rolls back both connections: the target keeps none of
// the half-written record set.
func TestClone_TransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// The same address content already lives in the target, so the
	// resolver takes the reuse path and commits nothing on its own
	// before the failure.
	iotesting.SeedAddressRD(t, f.tgt,
		"123 Main St", "Fort Collins", "CO", "80521")

	// A table missing partway down the list fails the walk after the
	// user and address rows are staged.
	iotesting.MustExec(t, f.tgt, `DROP TABLE app_household`)
	require.NoError(t, f.tgt.Commit(ctx))

	_, err := f.cloner.Clone(ctx, f.request())
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CloneTransferError, gnErr.Code)

	assert.Zero(t, iotesting.CountRows(t, f.tgt, "app_user", ""),
		"staged user row is rolled back")
	assert.Zero(t, iotesting.CountRows(t, f.tgt, "app_address", ""),
		"staged address row is rolled back")
}

// TestClone_AuxiliaryConnectionClosed verifies the dev-profile
// connection opened for the template-password lookup is closed as soon
// as the lookup is done, even when both main handles come from the
// caller.
func TestClone_AuxiliaryConnectionClosed(t *testing.T) {
	ctx := context.Background()

	// Neither connection is dev-class, forcing the auxiliary lookup.
	src := iotesting.OpenStore(t, db.EnvProd)
	tgt := iotesting.OpenStore(t, db.EnvLocal)

	addrID := iotesting.SeedAddressRD(t, src,
		"123 Main St", "Fort Collins", "CO", "80521")
	iotesting.SeedUser(t, src, "applicant@example.org", sourceHash, addrID)

	// The template account lives in a local-class store standing in for
	// the dev profile.
	auxPath := filepath.Join(t.TempDir(), "templates_local.sqlite")
	seed := iotesting.OpenStoreAt(t, db.EnvLocal, auxPath)
	seedAddr := iotesting.SeedAddressRD(t, seed,
		"200 Template Way", "Fort Collins", "CO", "80521")
	iotesting.SeedUser(t, seed, templateAccount, templateHash, seedAddr)
	require.NoError(t, seed.Close(ctx))

	cfg := config.New()
	cfg.Clone.TemplateAccount = templateAccount
	cfg.Clone.DevProfile = "templates_local"
	cfg.LocalPath = auxPath

	provider := iodb.NewProvider(cfg)
	t.Cleanup(func() { _ = provider.CloseAll(context.Background()) })
	cloner := ioclone.New(cfg, provider, nil)

	auxBefore, err := provider.Open(ctx, cfg.Clone.DevProfile)
	require.NoError(t, err)

	out, err := cloner.Clone(ctx, clone.Request{
		SourceProfile: src.ProfileName(),
		TargetProfile: tgt.ProfileName(),
		SourceEmail:   "applicant@example.org",
		TargetEmail:   "cloned@example.org",
		SourceHandle:  src,
		TargetHandle:  tgt,
	})
	require.NoError(t, err)

	row := queryOne(t, tgt,
		`SELECT password FROM app_user WHERE id = ?`, out.UserID)
	assert.Equal(t, templateHash, row[0])

	_, err = auxBefore.Query(ctx, `SELECT count(*) FROM app_user`)
	assert.Error(t, err, "auxiliary handle is closed after the lookup")

	auxAfter, err := provider.Open(ctx, cfg.Clone.DevProfile)
	require.NoError(t, err)
	assert.NotSame(t, auxBefore, auxAfter,
		"closed handle is evicted, not served from the cache")
	_, err = auxAfter.Query(ctx, `SELECT count(*) FROM app_user`)
	assert.NoError(t, err)
}

// TestClone_LocalPathPerRequest verifies a request-level store path is
// threaded to the provider for that call only and never written back
// into the shared configuration.
func TestClone_LocalPathPerRequest(t *testing.T) {
	ctx := context.Background()

	src := iotesting.OpenStore(t, db.EnvDev)
	addrID := iotesting.SeedAddressRD(t, src,
		"123 Main St", "Fort Collins", "CO", "80521")
	iotesting.SeedUser(t, src, "applicant@example.org", sourceHash, addrID)
	iotesting.SeedUser(t, src, templateAccount, templateHash, addrID)

	storePath := filepath.Join(t.TempDir(), "clone_target.sqlite")
	tgtSeed := iotesting.OpenStoreAt(t, db.EnvLocal, storePath)
	require.NoError(t, tgtSeed.Close(ctx))

	cfg := config.New()
	cfg.Clone.TemplateAccount = templateAccount
	pathBefore := cfg.LocalPath

	provider := iodb.NewProvider(cfg)
	t.Cleanup(func() { _ = provider.CloseAll(context.Background()) })
	cloner := ioclone.New(cfg, provider, nil)

	out, err := cloner.Clone(ctx, clone.Request{
		SourceProfile: src.ProfileName(),
		TargetProfile: "getyour_local",
		SourceEmail:   "applicant@example.org",
		TargetEmail:   "cloned@example.org",
		SourceHandle:  src,
		LocalPath:     storePath,
	})
	require.NoError(t, err)

	assert.Equal(t, pathBefore, cfg.LocalPath,
		"request path stays out of the shared configuration")

	check, err := provider.OpenAt(ctx, "getyour_local", storePath)
	require.NoError(t, err)
	n := iotesting.CountRows(t, check, "app_user", "")
	assert.Equal(t, int64(1), n)
	row := queryOne(t, check,
		`SELECT email FROM app_user WHERE id = ?`, out.UserID)
	assert.Equal(t, "cloned@example.org", row[0])
}

// TestClone_Twice exercises batch invocation: the same source user is
// cloned twice into one target, the second pass taking the new-identity
// path with zero new address rows.
func TestClone_Twice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	first, err := f.cloner.Clone(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.TargetEmail = "cloned-again@example.org"
	second, err := f.cloner.Clone(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.UserID, second.UserID)

	hash := iotesting.AddressSHA1(
		"123 Main St", "Fort Collins", "CO", "80521")
	n := iotesting.CountRows(t, f.tgt,
		"app_addressrd", "address_sha1 = ?", hash)
	assert.Equal(t, int64(1), n,
		"repeated resolution of the same hash inserts nothing")
}
