package ioextract

import (
	"fmt"
	"runtime"

	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
)

func QueryError(what string, err error) error {
	msg := "Extract query <em>%s</em> failed"
	vars := []any{what}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExtractQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: extract query %s failed: %w",
			fn, what, err),
	}
}

func WriteError(path string, err error) error {
	msg := "Cannot write extract <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExtractWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write extract %s: %w",
			fn, path, err),
	}
}

func BlobError(what string, err error) error {
	msg := "Blob storage operation failed for <em>%s</em>"
	vars := []any{what}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExtractBlobError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: blob operation for %s failed: %w",
			fn, what, err),
	}
}

func MoveError(path string, err error) error {
	msg := "Cannot move <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MoveFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot move %s: %w",
			fn, path, err),
	}
}

func ResetError(what string, err error) error {
	msg := "Cannot reset change markers (%s)"
	vars := []any{what}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExtractResetError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot reset change markers (%s): %w",
			fn, what, err),
	}
}
