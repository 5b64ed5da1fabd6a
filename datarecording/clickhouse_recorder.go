package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
)

// ClickHouseOptions locates a ClickHouse server.
type ClickHouseOptions struct {
	Addr      string
	Database  string
	Username  string
	Password  string
	BatchSize int
}

// clickHouseRecorder sends records to a ClickHouse server in batches.
type clickHouseRecorder struct {
	conn       clickhouse.Conn
	mu         sync.Mutex
	batchSize  int
	tables     map[string]*table
	tableOrder []string
	entryCount int
}

// NewClickHouseRecorder connects to a ClickHouse server. It panics if the
// server cannot be reached.
func NewClickHouseRecorder(opts ClickHouseOptions) DataRecorder {
	if opts.BatchSize == 0 {
		opts.BatchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to connect to ClickHouse"))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(errors.Wrap(err, "failed to ping ClickHouse"))
	}

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: opts.BatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	}

	panic(fmt.Sprintf("kind %s has no ClickHouse column type", kind))
}

// clickHouseSchema returns the CREATE TABLE statement for the sample entry.
func clickHouseSchema(tableName string, sampleEntry any) string {
	structType := reflect.TypeOf(sampleEntry)
	columns := make([]string, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		columns = append(columns,
			field.Name+" "+clickHouseType(field.Type.Kind()))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree()\nORDER BY tuple()",
		tableName, strings.Join(columns, ",\n\t"))
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.conn.Exec(context.Background(),
		clickHouseSchema(tableName, sampleEntry))
	if err != nil {
		panic(errors.Wrapf(err, "failed to create table %s", tableName))
	}

	r.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
	r.tableOrder = append(r.tableOrder, tableName)
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	table, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)
	r.entryCount++

	full := r.entryCount >= r.batchSize
	r.mu.Unlock()

	if full {
		r.Flush()
	}
}

func (r *clickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, len(r.tableOrder))
	copy(tables, r.tableOrder)

	return tables
}

func (r *clickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for _, tableName := range r.tableOrder {
		table := r.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(errors.Wrapf(err, "failed to prepare batch for %s", tableName))
		}

		for _, entry := range table.entries {
			if err := batch.Append(structs.Values(entry)...); err != nil {
				panic(errors.Wrapf(err, "failed to append to %s", tableName))
			}
		}

		if err := batch.Send(); err != nil {
			panic(errors.Wrapf(err, "failed to send batch for %s", tableName))
		}

		table.entries = nil
	}

	r.entryCount = 0
}

func (r *clickHouseRecorder) Close() error {
	r.Flush()
	return r.conn.Close()
}
