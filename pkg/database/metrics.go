package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
)

const startKey = "qrmenu:query_start"

// queryMetrics is a GORM plugin feeding metrics.DBQueryDuration.
type queryMetrics struct{}

func (queryMetrics) Name() string { return "qrmenu:metrics" }

func (queryMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, start) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, observe("create")) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, start) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, observe("query")) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, start) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, observe("update")) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, start) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, observe("delete")) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, start) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, observe("row")) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, start) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, observe("raw")) }},
	}

	for _, h := range hooks {
		if err := h.before("qrmenu:before_" + h.op); err != nil {
			return err
		}
		if err := h.after("qrmenu:after_" + h.op); err != nil {
			return err
		}
	}
	return nil
}

func start(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if v, ok := db.InstanceGet(startKey); ok {
			if t, ok := v.(time.Time); ok {
				metrics.ObserveDBQuery(op, t)
			}
		}
	}
}
