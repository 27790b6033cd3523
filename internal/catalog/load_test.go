// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSchemaCSV = `schema_name,table_name,column_name,data_type,is_nullable,is_primary_key,is_unique,description,min_value,max_value,pattern,accepted_values,references
analytics,customers,id,bigint,false,true,true,Customer key,,,,,
analytics,customers,email,string,false,false,false,Email address,,,^[^@]+@[^@]+$,,
analytics,customers,status,string,true,false,false,Account status,,,,active|inactive,
analytics,orders,id,bigint,false,true,true,Order key,,,,,
analytics,orders,amount,decimal,true,false,false,Order amount,0,100000,,,
analytics,orders,customer_id,bigint,false,false,false,Customer reference,,,,,customers.id
`

const validSourceCSV = `table_name,source_schema,source_database,file_format,location,description,refresh_frequency,partition_by,cluster_by
customers_raw,raw_data,lake,parquet,s3://lake/customers/,Raw customers,daily,event_date,customer_id
orders_raw,raw_data,lake,csv,s3://lake/orders/,Raw orders,hourly,,
`

const validMappingYAML = `staging_models:
  - name: stg_customers
    source_table: customers_raw
    columns:
      - name: id
        transformation: cast(id as bigint)
      - name: email
        transformation: lower(email)
  - name: stg_orders
    source_table: orders_raw
    columns:
      - name: id
      - name: amount
models:
  - name: customer_orders
    type: marts
    mart_type: facts
    description: Orders joined to customers
    source_tables:
      - stg_customers
      - stg_orders
    business_logic: Join orders to customers and aggregate totals per customer.
    expected_behavior: One row per customer with lifetime order totals.
    columns:
      - name: customer_id
        data_type: bigint
        not_null: true
        unique: true
        primary_key: true
      - name: lifetime_value
        data_type: decimal
        min_value: 0
`

func mustRows(t *testing.T, csv string) []Row {
	t.Helper()
	rows, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return rows
}

func TestLoad_Valid(t *testing.T) {
	cat, err := Load(
		mustRows(t, validSchemaCSV),
		mustRows(t, validSourceCSV),
		[]byte(validMappingYAML),
	)
	require.NoError(t, err)

	require.Len(t, cat.Tables, 2)
	customers, ok := cat.Table("analytics", "customers")
	require.True(t, ok)
	assert.Equal(t, "analytics.customers", customers.Key())
	require.Len(t, customers.Columns, 3)
	assert.True(t, customers.Columns[0].PrimaryKey)
	assert.False(t, customers.Columns[0].Nullable)
	assert.Equal(t, []string{"active", "inactive"}, customers.Columns[2].AcceptedValues)

	orders, ok := cat.Table("analytics", "orders")
	require.True(t, ok)
	fk := orders.Columns[2].Ref
	require.NotNil(t, fk)
	assert.Equal(t, "customers", fk.Table)
	assert.Equal(t, "id", fk.Column)
	require.NotNil(t, orders.Columns[1].MinValue)
	assert.Equal(t, 0.0, *orders.Columns[1].MinValue)

	require.Len(t, cat.Sources, 2)
	src, ok := cat.Source("customers_raw")
	require.True(t, ok)
	assert.Equal(t, "raw_data", src.Schema)
	assert.Equal(t, "lake", src.Database)
	assert.Equal(t, "event_date", src.PartitionBy)
	assert.Equal(t, "customer_id", src.ClusterBy)

	require.Len(t, cat.Staging, 2)
	assert.Equal(t, "stg_customers", cat.Staging[0].Name)
	assert.Equal(t, "cast(id as bigint)", cat.Staging[0].Columns[0].Expression)

	require.Len(t, cat.Models, 1)
	m := cat.Models[0]
	assert.Equal(t, "marts", m.Type)
	assert.Equal(t, "facts", m.MartType)
	require.Len(t, m.Columns, 2)
	assert.True(t, m.Columns[0].PrimaryKey)
	assert.False(t, m.Columns[0].Nullable)
}

func TestLoad_SourceDefaults(t *testing.T) {
	rows := mustRows(t, "table_name,file_format,location\nevents_raw,json,s3://lake/events/\n")

	cat, err := Load(nil, rows, nil)
	require.NoError(t, err)

	src, ok := cat.Source("events_raw")
	require.True(t, ok)
	assert.Equal(t, DefaultSourceSchema, src.Schema)
	assert.Equal(t, DefaultSourceDatabase, src.Database)
}

func violations(t *testing.T, err error) []Violation {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Violations
}

func hasViolation(vs []Violation, rule, detail string) bool {
	for _, v := range vs {
		if v.Rule == rule && (detail == "" || strings.Contains(v.Detail, detail) || strings.Contains(v.Entity, detail)) {
			return true
		}
	}
	return false
}

func TestLoad_PrimaryKeyInvariant(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{
			name: "nullable primary key",
			row:  "analytics,customers,id,bigint,true,true,true",
		},
		{
			name: "non-unique primary key",
			row:  "analytics,customers,id,bigint,false,true,false",
		},
		{
			name: "primary key with defaulted nullability",
			row:  "analytics,customers,id,bigint,,true,true",
		},
	}

	header := "schema_name,table_name,column_name,data_type,is_nullable,is_primary_key,is_unique\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(mustRows(t, header+tt.row+"\n"), nil, nil)
			vs := violations(t, err)
			assert.True(t, hasViolation(vs, RulePrimaryKey, "analytics.customers.id"))
		})
	}
}

func TestLoad_MappingPrimaryKeyInvariant(t *testing.T) {
	mapping := `models:
  - name: dim_customer
    columns:
      - name: id
        primary_key: true
`
	_, err := Load(nil, nil, []byte(mapping))
	vs := violations(t, err)
	assert.True(t, hasViolation(vs, RulePrimaryKey, "dim_customer"))
}

func TestLoad_CollectsAllViolations(t *testing.T) {
	schemaCSV := `schema_name,table_name,column_name,data_type,is_nullable,min_value
analytics,customers,,bigint,false,
analytics,customers,id,,maybe,ten
`
	_, err := Load(mustRows(t, schemaCSV), nil, nil)
	vs := violations(t, err)

	// Row 2 misses column_name; row 3 misses data_type and has two bad values.
	assert.True(t, hasViolation(vs, RuleMissingField, "column_name"))
	assert.True(t, hasViolation(vs, RuleMissingField, "data_type"))
	assert.GreaterOrEqual(t, len(vs), 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
}

func TestLoad_InvalidValues(t *testing.T) {
	schemaCSV := `schema_name,table_name,column_name,data_type,is_nullable,min_value,max_length,references
analytics,customers,id,bigint,maybe,abc,many,badref
`
	_, err := Load(mustRows(t, schemaCSV), nil, nil)
	vs := violations(t, err)

	assert.True(t, hasViolation(vs, RuleInvalidValue, "is_nullable"))
	assert.True(t, hasViolation(vs, RuleInvalidValue, "min_value"))
	assert.True(t, hasViolation(vs, RuleInvalidValue, "max_length"))
	assert.True(t, hasViolation(vs, RuleInvalidValue, "references"))
}

func TestLoad_MissingSourceFields(t *testing.T) {
	rows := mustRows(t, "table_name,file_format,location\nevents_raw,,\n")

	_, err := Load(nil, rows, nil)
	vs := violations(t, err)

	assert.True(t, hasViolation(vs, RuleMissingField, "file_format"))
	assert.True(t, hasViolation(vs, RuleMissingField, "location"))
	assert.Len(t, vs, 2)
}

func TestLoad_DanglingReference(t *testing.T) {
	sourceCSV := "table_name,file_format,location\ncustomers_raw,parquet,s3://lake/customers/\n"
	mapping := `staging_models:
  - name: stg_customers
    source_table: customers_raw
  - name: stg_orders
    source_table: orders_raw
models:
  - name: customer_orders
    source_tables:
      - stg_customers
      - missing_table
`
	_, err := Load(nil, mustRows(t, sourceCSV), []byte(mapping))
	vs := violations(t, err)

	assert.True(t, hasViolation(vs, RuleDanglingReference, "orders_raw"))
	assert.True(t, hasViolation(vs, RuleDanglingReference, "missing_table"))
	assert.Len(t, vs, 2)
}

func TestLoad_PriorModelReference(t *testing.T) {
	sourceCSV := "table_name,file_format,location\ncustomers_raw,parquet,s3://lake/customers/\n"
	mapping := `staging_models:
  - name: stg_customers
    source_table: customers_raw
models:
  - name: int_customers
    type: intermediate
    source_tables:
      - stg_customers
  - name: dim_customers
    source_tables:
      - int_customers
`
	_, err := Load(nil, mustRows(t, sourceCSV), []byte(mapping))
	assert.NoError(t, err)
}

func TestLoad_LaterModelReferenceIsDangling(t *testing.T) {
	mapping := `models:
  - name: first
    source_tables:
      - second
  - name: second
`
	_, err := Load(nil, nil, []byte(mapping))
	vs := violations(t, err)

	assert.True(t, hasViolation(vs, RuleDanglingReference, "second"))
}

func TestLoad_Duplicates(t *testing.T) {
	schemaCSV := `schema_name,table_name,column_name,data_type
analytics,customers,id,bigint
analytics,customers,id,string
`
	sourceCSV := `table_name,file_format,location
customers_raw,parquet,s3://a/
customers_raw,csv,s3://b/
`
	mapping := `staging_models:
  - name: stg_customers
    source_table: customers_raw
models:
  - name: stg_customers
`
	_, err := Load(mustRows(t, schemaCSV), mustRows(t, sourceCSV), []byte(mapping))
	vs := violations(t, err)

	assert.True(t, hasViolation(vs, RuleDuplicateColumn, "id"))
	assert.True(t, hasViolation(vs, RuleDuplicateSource, "customers_raw"))
	assert.True(t, hasViolation(vs, RuleDuplicateModel, "stg_customers"))
}

func TestLoad_MappingSyntaxError(t *testing.T) {
	_, err := Load(nil, nil, []byte("models: [unclosed"))
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "parse mapping document")
}

func TestLoad_EmptyInputs(t *testing.T) {
	cat, err := Load(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, cat.Tables)
	assert.Empty(t, cat.Sources)
	assert.Empty(t, cat.Staging)
	assert.Empty(t, cat.Models)
}

func TestLoad_ModelTypeDefault(t *testing.T) {
	mapping := `models:
  - name: dim_customer
`
	cat, err := Load(nil, nil, []byte(mapping))
	require.NoError(t, err)
	assert.Equal(t, DefaultModelType, cat.Models[0].Type)
}

func TestViolation_String(t *testing.T) {
	v := Violation{Entity: "model x", Rule: RuleMissingField, Detail: "name"}
	assert.Equal(t, "model x: missing required field: name", v.String())

	v = Violation{Entity: "analytics.t.id", Rule: RulePrimaryKey}
	assert.Equal(t, "analytics.t.id: "+RulePrimaryKey, v.String())
}
