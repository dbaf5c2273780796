//go:build !occa

package main

import (
	"errors"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/occa"
)

var errNoDevice = errors.New("tensorc was built without OCCA support, rebuild with -tags occa")

func runDevice(props, name string, body []codegen.Stmt, l occa.Layout, cells []kernel.Inputs) ([][]float64, error) {
	return nil, errNoDevice
}
