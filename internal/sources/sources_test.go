// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sources

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_GroupsBySchema(t *testing.T) {
	tables := []catalog.SourceTable{
		{Name: "orders", Schema: "raw", Database: "default", FileFormat: "parquet", Location: "s3://lake/orders"},
		{Name: "customers", Schema: "crm", Database: "default", FileFormat: "csv", Location: "s3://lake/customers"},
		{Name: "payments", Schema: "raw", Database: "default", FileFormat: "parquet", Location: "s3://lake/payments"},
	}

	doc := Build(tables)

	require.Equal(t, 2, doc.Version)
	require.Len(t, doc.Sources, 2)

	raw := doc.Sources[0]
	assert.Equal(t, "raw", raw.Name)
	assert.Equal(t, "default", raw.Database)
	assert.Equal(t, "External tables in raw schema", raw.Description)
	require.Len(t, raw.Tables, 2)
	assert.Equal(t, "orders", raw.Tables[0].Name)
	assert.Equal(t, "payments", raw.Tables[1].Name)

	crm := doc.Sources[1]
	assert.Equal(t, "crm", crm.Name)
	require.Len(t, crm.Tables, 1)
	assert.Equal(t, "customers", crm.Tables[0].Name)
}

func TestBuild_SameSchemaDifferentDatabase(t *testing.T) {
	tables := []catalog.SourceTable{
		{Name: "orders", Schema: "raw", Database: "lake_a", FileFormat: "parquet", Location: "s3://a/orders"},
		{Name: "orders", Schema: "raw", Database: "lake_b", FileFormat: "parquet", Location: "s3://b/orders"},
	}

	doc := Build(tables)

	require.Len(t, doc.Sources, 2)
	assert.Equal(t, "lake_a", doc.Sources[0].Database)
	assert.Equal(t, "lake_b", doc.Sources[1].Database)
}

func TestBuild_ExternalLayout(t *testing.T) {
	tables := []catalog.SourceTable{
		{
			Name:             "events",
			Schema:           "raw",
			Database:         "default",
			FileFormat:       "json",
			Location:         "s3://lake/events",
			PartitionBy:      "event_date",
			ClusterBy:        "tenant_id",
			RefreshFrequency: "hourly",
			Description:      "Clickstream events.",
		},
	}

	doc := Build(tables)

	require.Len(t, doc.Sources, 1)
	require.Len(t, doc.Sources[0].Tables, 1)
	table := doc.Sources[0].Tables[0]

	assert.Equal(t, "events", table.Name)
	assert.Equal(t, "Clickstream events.", table.Description)
	assert.Equal(t, "s3://lake/events", table.External.Location)
	assert.Equal(t, "json", table.External.FileFormat)
	assert.Equal(t, "hourly", table.External.RefreshFrequency)
	require.Len(t, table.External.Partitions, 1)
	assert.Equal(t, "event_date", table.External.Partitions[0].Name)
	assert.Equal(t, "date", table.External.Partitions[0].DataType)
	assert.Equal(t, []string{"tenant_id"}, table.External.ClusterBy)
}

func TestBuild_OmitsEmptyLayout(t *testing.T) {
	tables := []catalog.SourceTable{
		{Name: "plain", Schema: "raw", Database: "default", FileFormat: "csv", Location: "s3://lake/plain"},
	}

	doc := Build(tables)

	table := doc.Sources[0].Tables[0]
	assert.Empty(t, table.External.Partitions)
	assert.Empty(t, table.External.ClusterBy)
	assert.Empty(t, table.External.RefreshFrequency)
}

func TestBuild_Empty(t *testing.T) {
	doc := Build(nil)

	require.Equal(t, 2, doc.Version)
	assert.Empty(t, doc.Sources)
}

func TestDocument_Encode(t *testing.T) {
	doc := Build([]catalog.SourceTable{
		{
			Name:        "orders",
			Schema:      "raw",
			Database:    "default",
			FileFormat:  "parquet",
			Location:    "s3://lake/orders",
			PartitionBy: "order_date",
		},
	})

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	out := buf.String()

	for _, want := range []string{
		"version: 2",
		"- name: raw",
		"database: default",
		"description: External tables in raw schema",
		"- name: orders",
		"location: s3://lake/orders",
		"file_format: parquet",
		"- name: order_date",
		"data_type: date",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.Index(out, "version: 2") < strings.Index(out, "sources:"))
}

func TestDocument_EncodeDeterministic(t *testing.T) {
	tables := []catalog.SourceTable{
		{Name: "orders", Schema: "raw", Database: "default", FileFormat: "parquet", Location: "s3://lake/orders"},
		{Name: "customers", Schema: "crm", Database: "default", FileFormat: "csv", Location: "s3://lake/customers"},
	}

	var first string
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		require.NoError(t, Build(tables).Encode(&buf))
		if i == 0 {
			first = buf.String()
			continue
		}
		require.Equal(t, first, buf.String())
	}
}
