/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"testing"
	"testing/fstest"
)

func TestSplitSQLStatements(t *testing.T) {
	script := `
-- dishes
INSERT INTO dish (id, name) VALUES (1, 'Salade');

CREATE TABLE t (
    id INTEGER,
    name TEXT
);
SELECT 1`
	got := splitSQLStatements(script)
	want := []string{
		"INSERT INTO dish (id, name) VALUES (1, 'Salade');",
		"CREATE TABLE t ( id INTEGER, name TEXT );",
		"SELECT 1",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d statements %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseFileOrder(t *testing.T) {
	cases := map[string]int{
		"001_dish.sql":   1,
		"010_extra.sql":  10,
		"readme.sql":     999,
		"2024_later.sql": 2024,
	}
	for name, want := range cases {
		if got := parseFileOrder(name); got != want {
			t.Errorf("parseFileOrder(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestGetSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"common/010_b.sql": {Data: []byte("SELECT 1;")},
		"common/002_a.sql": {Data: []byte("SELECT 1;")},
		"common/notes.txt": {Data: []byte("ignored")},
		"common/extra.sql": {Data: []byte("SELECT 1;")},
		"common/sub/x.sql": {Data: []byte("SELECT 1;")},
	}
	m := NewSQLInitManager(fsys, nil)

	files, err := m.GetSQLFiles("common")
	if err != nil {
		t.Fatalf("GetSQLFiles() error = %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"002_a.sql", "010_b.sql", "extra.sql"}
	if len(names) != len(want) {
		t.Fatalf("files = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("files = %v, want %v", names, want)
		}
	}

	missing, err := m.GetSQLFiles("environments/prod")
	if err != nil || len(missing) != 0 {
		t.Fatalf("GetSQLFiles(missing) = %v, %v; want no files", missing, err)
	}
}

func TestEmbeddedSQLTree(t *testing.T) {
	for _, dir := range []string{"postgres", "mysql", "sqlite"} {
		fsys, err := EmbeddedSQL("schema")
		if err != nil {
			t.Fatalf("EmbeddedSQL() error = %v", err)
		}
		files, err := NewSQLInitManager(fsys, nil).GetSQLFiles(dir)
		if err != nil || len(files) == 0 {
			t.Fatalf("no schema files for %s: %v", dir, err)
		}
	}

	seed, err := SeedFS("")
	if err != nil {
		t.Fatalf("SeedFS() error = %v", err)
	}
	files, err := NewSQLInitManager(seed, nil).GetSQLFiles("common")
	if err != nil || len(files) != 2 {
		t.Fatalf("seed files = %v, %v; want 2", files, err)
	}

	if _, err := SeedFS("/definitely/not/here"); err == nil {
		t.Fatalf("SeedFS(missing dir) succeeded")
	}
}
