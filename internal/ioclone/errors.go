package ioclone

import (
	"fmt"
	"runtime"

	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
)

func UserNotFoundError(email, profile string) error {
	msg := "No user with email <em>%s</em> in <em>%s</em>"
	vars := []any{email, profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneUserNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no user %s in %s",
			fn, email, profile),
	}
}

func AmbiguousUserError(what, profile string, count int) error {
	msg := "<warning>%d</warning> rows for %s in <em>%s</em> where one is required"
	vars := []any{count, what, profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneAmbiguousUserError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %d rows for %s in %s",
			fn, count, what, profile),
	}
}

func CancelledError(reason string) error {
	msg := "Clone cancelled: %s"
	vars := []any{reason}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneCancelledError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: clone cancelled: %s", fn, reason),
	}
}

func PolicyError(source, target string, err error) error {
	msg := "Cannot clone from <em>%s</em> to <em>%s</em>: %v"
	vars := []any{source, target, err}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ClonePolicyError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot clone %s to %s: %w",
			fn, source, target, err),
	}
}

func TransferError(table string, err error) error {
	msg := "Transfer failed on table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneTransferError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: transfer failed on %s: %w",
			fn, table, err),
	}
}

func AddressError(srcAddrID int64, err error) error {
	msg := "Cannot resolve address <em>%d</em> in the target store"
	vars := []any{srcAddrID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneAddressError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot resolve address %d: %w",
			fn, srcAddrID, err),
	}
}

func TemplatePasswordError(account string, err error) error {
	msg := "Cannot fetch the password of template account <em>%s</em>"
	vars := []any{account}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CloneTemplatePasswordError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: template password for %s: %w",
			fn, account, err),
	}
}
