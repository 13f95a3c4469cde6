package iodb

import (
	"fmt"
	"runtime"

	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
)

func ConnectionError(profile, target string, err error) error {
	msg := "Cannot connect to <em>%s</em> (%s)"
	vars := []any{profile, target}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot connect to %s: %w",
			fn, profile, err),
	}
}

func ProfileError(profile string, err error) error {
	msg := "Profile <em>%s</em> cannot be used"
	vars := []any{profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBProfileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: bad profile %s: %w",
			fn, profile, err),
	}
}

func QueryError(profile, query string, err error) error {
	msg := "Query failed on <em>%s</em>"
	vars := []any{profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: query failed on %s: %s: %w",
			fn, profile, query, err),
	}
}

func ExecError(profile, query string, err error) error {
	msg := "Statement failed on <em>%s</em>"
	vars := []any{profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBExecError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: statement failed on %s: %s: %w",
			fn, profile, query, err),
	}
}

func TxError(profile, op string, err error) error {
	msg := "Transaction %s failed on <em>%s</em>"
	vars := []any{op, profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBTxError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: transaction %s failed on %s: %w",
			fn, op, profile, err),
	}
}
