package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File system errors
	CreateDirError
	WriteFileError
	ReadFileError
	MoveFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBProfileError
	DBQueryError
	DBExecError
	DBTxError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaCatalogError
	SchemaBootstrapRefusedError

	// Clone errors
	CloneUserNotFoundError
	CloneAmbiguousUserError
	CloneCancelledError
	CloneTransferError
	CloneAddressError
	CloneTemplatePasswordError
	ClonePolicyError

	// Extract errors
	ExtractQueryError
	ExtractWriteError
	ExtractBlobError
	ExtractResetError
)
