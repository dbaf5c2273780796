//go:build occa

package main

import (
	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/occa"
)

func runDevice(props, name string, body []codegen.Stmt, l occa.Layout, cells []kernel.Inputs) ([][]float64, error) {
	src, err := occa.Source(name, body, l)
	if err != nil {
		return nil, err
	}
	b, err := l.Pack(cells)
	if err != nil {
		return nil, err
	}
	device, err := occa.NewDevice(props)
	if err != nil {
		return nil, err
	}
	defer device.Free()
	return device.Run(src, name, l, b)
}
