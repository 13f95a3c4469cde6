package ioschema

// LocalDDL creates the application tables in an empty SQLite store. The
// column sets mirror the models in pkg/schema; PostgreSQL environments
// get the same shape through GORM AutoMigrate.
const LocalDDL = `
CREATE TABLE app_user (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	first_name TEXT DEFAULT '',
	last_name TEXT DEFAULT '',
	phone_number TEXT DEFAULT '',
	date_joined TIMESTAMP,
	last_login TIMESTAMP,
	last_completed_at TIMESTAMP,
	last_renewed_at TIMESTAMP,
	is_archived BOOLEAN NOT NULL DEFAULT 0,
	is_updated BOOLEAN NOT NULL DEFAULT 0,
	has_viewed_dashboard BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE app_addressrd (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address1 TEXT DEFAULT '',
	address2 TEXT DEFAULT '',
	city TEXT DEFAULT '',
	state TEXT DEFAULT '',
	zip_code TEXT DEFAULT '',
	address_sha1 TEXT NOT NULL UNIQUE,
	is_in_gma BOOLEAN NOT NULL DEFAULT 0,
	is_city_covered BOOLEAN NOT NULL DEFAULT 0,
	has_connexion BOOLEAN NOT NULL DEFAULT 0,
	is_verified BOOLEAN NOT NULL DEFAULT 0,
	created TIMESTAMP,
	modified TIMESTAMP
);

CREATE TABLE app_address (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	eligibility_address_id INTEGER NOT NULL,
	mailing_address_id INTEGER NOT NULL,
	is_verified BOOLEAN NOT NULL DEFAULT 0,
	is_updated BOOLEAN NOT NULL DEFAULT 0,
	created TIMESTAMP,
	modified TIMESTAMP
);

CREATE TABLE app_household (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	duration_at_address TEXT DEFAULT '',
	number_persons_in_household INTEGER DEFAULT 0,
	income_as_fraction_of_ami REAL,
	is_income_verified BOOLEAN NOT NULL DEFAULT 0,
	is_updated BOOLEAN NOT NULL DEFAULT 0,
	created TIMESTAMP,
	modified TIMESTAMP
);

CREATE TABLE app_householdmembers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	household_info TEXT DEFAULT '',
	is_updated BOOLEAN NOT NULL DEFAULT 0,
	created TIMESTAMP,
	modified TIMESTAMP
);

CREATE TABLE app_eligibilityprogram (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	program_id INTEGER NOT NULL,
	document_path TEXT DEFAULT '',
	created TIMESTAMP,
	modified TIMESTAMP
);

CREATE TABLE app_iqprogram (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	program_id INTEGER NOT NULL,
	is_enrolled BOOLEAN NOT NULL DEFAULT 0,
	applied_at TIMESTAMP,
	enrolled_at TIMESTAMP
);

CREATE TABLE app_userhist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_addresshist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_householdhist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_householdmembershist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_eligibilityprogramhist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_iqprogramhist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	historical_values TEXT DEFAULT '',
	created TIMESTAMP
);

CREATE TABLE app_iqprogramrd (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	program_name TEXT NOT NULL UNIQUE,
	friendly_name TEXT DEFAULT '',
	ami_threshold REAL,
	is_active BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE app_eligibilityprogramrd (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	program_name TEXT NOT NULL UNIQUE,
	friendly_name TEXT DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE app_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	star_rating INTEGER,
	feedback_comments TEXT DEFAULT '',
	modified TIMESTAMP
);
`
