// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Starter catalog inputs written by init so a fresh project generates
// end to end before anyone edits a file.
const (
	SampleSchemaCSV = `schema_name,table_name,column_name,data_type,is_nullable,is_primary_key,is_unique,min_value,accepted_values,references,description
raw,orders,order_id,integer,false,true,true,,,,Primary key of the order
raw,orders,customer_id,integer,false,false,false,,,customers.customer_id,Customer placing the order
raw,orders,status,string,false,false,false,,placed|shipped|returned,,Order lifecycle status
raw,orders,amount_cents,integer,true,false,false,0,,,Order total in cents
raw,customers,customer_id,integer,false,true,true,,,,Primary key of the customer
raw,customers,email,string,false,false,false,,,,Contact email address
`

	SampleSourceCSV = `table_name,source_schema,source_database,file_format,location,partition_by,description
orders,raw,lake,parquet,s3://lake/raw/orders,order_date,Raw order events
customers,raw,lake,parquet,s3://lake/raw/customers,,Customer master data
`

	SampleMappingYAML = `staging_models:
  - name: stg_orders
    source_table: orders
    columns:
      - name: order_id
      - name: customer_id
      - name: status
      - name: amount
        transformation: amount_cents / 100.0

  - name: stg_customers
    source_table: customers

models:
  - name: customer_orders
    type: marts
    description: One row per order with customer attributes.
    source_tables:
      - stg_orders
      - stg_customers
    business_logic: Join orders to customers on customer_id and keep every order.
    expected_behavior: Row count equals the orders source row count.
    columns:
      - name: order_id
        data_type: integer
        primary_key: true
        not_null: true
        unique: true
      - name: customer_email
        data_type: string
      - name: amount
        data_type: decimal
        min_value: 0
`
)

// Samples maps starter input paths, relative to the project directory,
// to their contents.
func Samples() map[string]string {
	return map[string]string{
		filepath.Join("config", "database_schema.csv"): SampleSchemaCSV,
		filepath.Join("config", "source_tables.csv"):   SampleSourceCSV,
		filepath.Join("config", "table_mappings.yaml"): SampleMappingYAML,
	}
}

// WriteSample writes one starter file, creating parent directories. An
// existing file is left alone unless force is set; the return value
// reports whether the file was written.
func WriteSample(path string, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // path is provided by caller
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
