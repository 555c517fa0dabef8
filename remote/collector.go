// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
)

const (
	CollectorName  = "org.artgc.Collector"
	CollectorPath  = dbus.ObjectPath("/org/artgc/Collector")
	CollectorIface = "org.artgc.Collector"
)

// CollectorControl is the part of the collector exposed on the bus.
type CollectorControl interface {
	Collect() gc.Report
	Stats() gc.Stats
}

// CollectorService publishes collector statistics as read-only D-Bus
// properties and lets other processes trigger a collection pass.
type CollectorService struct {
	dbus    *dbus.Conn
	control CollectorControl
	props   *prop.Properties
	logger  logger.LoggerInterface
}

// collectorObject holds the methods callable over D-Bus.
type collectorObject struct {
	svc *CollectorService
}

func RegisterCollectorService(control CollectorControl, logger_ logger.LoggerInterface) (svc *CollectorService, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	svc = &CollectorService{
		dbus:    conn,
		control: control,
		logger:  logger_,
	}
	obj := &collectorObject{svc: svc}

	err = conn.Export(obj, CollectorPath, CollectorIface)
	if err != nil {
		return
	}

	svc.props, err = prop.Export(
		conn,
		CollectorPath,
		map[string]map[string]*prop.Prop{
			CollectorIface: statsProps(control.Stats()),
		},
	)
	if err != nil {
		return
	}

	n := &introspect.Node{
		Name: string(CollectorPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       CollectorIface,
				Methods:    introspect.Methods(obj),
				Properties: svc.props.Introspection(CollectorIface),
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), CollectorPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	reply, err := conn.RequestName(CollectorName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}
	return
}

func (s *CollectorService) Close() {
	if err := s.dbus.Close(); err != nil {
		s.logger.PrintError("collector service Close", err)
	}
}

// Refresh publishes new statistics; call it after every collection pass.
func (s *CollectorService) Refresh(stats gc.Stats) {
	if s.props == nil {
		return
	}
	for name, p := range statsProps(stats) {
		s.props.SetMust(CollectorIface, name, p.Value)
	}
}

// Collect runs a pass and returns how many bitmaps it freed and how many
// bytes that released.
func (o *collectorObject) Collect() (int32, uint64, *dbus.Error) {
	report := o.svc.control.Collect()
	o.svc.Refresh(o.svc.control.Stats())

	evicted := report.NonCached.Evicted + report.Cached.Evicted
	freed := report.NonCached.Freed + report.Cached.Freed
	if o.svc.logger != nil {
		o.svc.logger.Printf("dbus: collection pass %d freed %d bitmaps", report.Pass, evicted)
	}
	return int32(evicted), freed, nil
}

func statsProps(stats gc.Stats) map[string]*prop.Prop {
	return map[string]*prop.Prop{
		"Count":           {Value: int32(stats.Count), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"BitmapNum":       {Value: int32(stats.BitmapNum), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"MemSize":         {Value: stats.MemSize, Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"CachedBitmapNum": {Value: int32(stats.CachedBitmapNum), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"CachedMemSize":   {Value: stats.CachedMemSize, Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"SystemBitmapNum": {Value: int32(stats.SystemBitmapNum), Writable: false, Emit: prop.EmitTrue, Callback: nil},
	}
}
