package clone

// UserTable is the root table of the record set. It must be copied first
// so that foreign keys on the dependent tables resolve.
const UserTable = "app_user"

// Tables lists every table that belongs to a user's record set, in the
// order rows must be inserted. The history tables mirror their live
// counterparts and are copied even when empty queries return nothing.
var Tables = []string{
	UserTable,
	"app_address",
	"app_household",
	"app_householdmembers",
	"app_eligibilityprogram",
	"app_iqprogram",
	"app_userhist",
	"app_addresshist",
	"app_householdhist",
	"app_householdmembershist",
	"app_eligibilityprogramhist",
	"app_iqprogramhist",
}

// OwnerField returns the column that ties a row of table to its user:
// the primary key for the user table itself, the user foreign key for
// every dependent table.
func OwnerField(table string) string {
	if table == UserTable {
		return "id"
	}
	return "user_id"
}

// AddressRefFields lists the app_address columns that reference
// app_addressrd rows. They are resolved per target via the address hash
// rather than copied verbatim.
var AddressRefFields = []string{
	"eligibility_address_id",
	"mailing_address_id",
}
