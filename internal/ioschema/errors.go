package ioschema

import (
	"fmt"
	"runtime"

	"github.com/getyour/gyadmin/pkg/errcode"
	"github.com/gnames/gn"
)

func CatalogError(table string, err error) error {
	msg := "Cannot read columns of <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaCatalogError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read columns of %s: %w",
			fn, table, err),
	}
}

func GORMConnectionError(profile string, err error) error {
	msg := "Cannot connect to <em>%s</em> for schema migration"
	vars := []any{profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: gorm connection to %s failed: %w",
			fn, profile, err),
	}
}

func CreateSchemaError(profile string, err error) error {
	msg := "Cannot create schema in <em>%s</em>"
	vars := []any{profile}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create schema in %s: %w",
			fn, profile, err),
	}
}

func BootstrapRefusedError(profile string, err error) error {
	msg := "Cannot bootstrap <em>%s</em>: %v"
	vars := []any{profile, err}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaBootstrapRefusedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: bootstrap of %s refused: %w",
			fn, profile, err),
	}
}
