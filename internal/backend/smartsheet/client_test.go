package smartsheet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

const sheetBody = `{
  "id": 4968623136264068,
  "columns": [
    {"id": 7329347793014660, "title": "Task ID"},
    {"id": 4796073002618756, "title": "Status"}
  ],
  "rows": [
    {"id": 11, "rowNumber": 1, "cells": [
      {"columnId": 7329347793014660, "value": "TASK-1"},
      {"columnId": 4796073002618756, "value": "Assigned", "displayValue": "Assigned"}
    ]},
    {"id": 12, "rowNumber": 2, "cells": [
      {"columnId": 7329347793014660, "value": "TASK-2"},
      {"columnId": 4796073002618756}
    ]}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(srv.Client(), srv.URL, "4968623136264068")
	require.NoError(t, err)
	return c
}

func TestRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sheets/4968623136264068", r.URL.Path)
		io.WriteString(w, sheetBody)
	})

	rows, err := c.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(11), rows[0].ID)
	v, ok := rows[0].Value(4796073002618756)
	assert.True(t, ok)
	assert.Equal(t, "Assigned", v)
	v, _ = rows[1].Value(4796073002618756)
	assert.Nil(t, v)
}

func TestColumns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sheetBody)
	})

	cols, err := c.Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []service.Column{
		{ID: 7329347793014660, Title: "Task ID"},
		{ID: 4796073002618756, Title: "Status"},
	}, cols)
}

func TestRows_StoreError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"errorCode": 1004, "message": "You are not authorized to perform this action."}`)
	})

	_, err := c.Rows(context.Background())
	require.Error(t, err)

	var se *service.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, service.KindStore, se.Kind)
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.Contains(t, se.Msg, "not authorized")
}

func TestRows_DecodeError(t *testing.T) {
	for name, body := range map[string]string{
		"html":  "<html>bad gateway</html>",
		"empty": "",
		"shape": `{"rows": {"id": 1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			_, err := c.Rows(context.Background())
			assert.True(t, service.IsKind(err, service.KindDecode), "err = %v", err)
		})
	}
}

func TestRows_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := NewWithHTTPClient(srv.Client(), srv.URL, "1")
	require.NoError(t, err)
	srv.Close()

	_, err = c.Rows(context.Background())
	assert.True(t, service.IsKind(err, service.KindTransport), "err = %v", err)
}

func TestAddRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sheets/4968623136264068/rows", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rows []sheet.Row
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		if !assert.Len(t, rows, 1) {
			return
		}
		assert.Zero(t, rows[0].ID)

		rows[0].ID = 77
		json.NewEncoder(w).Encode(map[string]any{"message": "SUCCESS", "resultCode": 0, "result": rows})
	})

	stored, err := c.AddRows(context.Background(), []sheet.Row{{Cells: []sheet.Cell{{ColumnID: 1, Value: "TASK-1"}}}})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(77), stored[0].ID)
}

func TestAddRows_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	stored, err := c.AddRows(context.Background(), []sheet.Row{{}})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAddRows_RejectsRowID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.AddRows(context.Background(), []sheet.Row{{ID: 5}})
	assert.Error(t, err)
}

func TestUpdateRows(t *testing.T) {
	var got []sheet.Row
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sheets/4968623136264068/rows", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"message":"SUCCESS","result":[]}`)
	})

	err := c.UpdateRows(context.Background(), []sheet.Row{{ID: 11, Cells: []sheet.Cell{{ColumnID: 2, Value: ""}}}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ID)
	v, ok := got[0].Value(2)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestUpdateRows_StoreError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.UpdateRows(context.Background(), []sheet.Row{{ID: 11}})
	var se *service.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestNew_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		io.WriteString(w, `{"rows": []}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL, "secret", "9")
	require.NoError(t, err)
	rows, err := c.Rows(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNew_ProxyHasNoCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `{"rows": []}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL+"/api/smartsheet/", "", "9")
	require.NoError(t, err)
	_, err = c.Rows(context.Background())
	require.NoError(t, err)
}

func TestNewWithHTTPClient_RequiresSheet(t *testing.T) {
	_, err := NewWithHTTPClient(http.DefaultClient, "", "")
	assert.Error(t, err)
}
