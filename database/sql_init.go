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
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

//go:embed sql
var embeddedSQL embed.FS

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SQLInitManager executes ordered *.sql files from a file system.
type SQLInitManager struct {
	fsys   fs.FS
	logger Logger
}

// SQLFileInfo describes a SQL file to be executed.
type SQLFileInfo struct {
	Path  string
	Name  string
	Order int
}

// ExecutionResult is the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Duration     time.Duration
	Statements   int
	RowsAffected int64
}

// NewSQLInitManager reads SQL files from fsys.
func NewSQLInitManager(fsys fs.FS, logger Logger) *SQLInitManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &SQLInitManager{fsys: fsys, logger: logger}
}

// EmbeddedSQL returns the SQL tree compiled into the binary, rooted at sub.
func EmbeddedSQL(sub string) (fs.FS, error) {
	return fs.Sub(embeddedSQL, path.Join("sql", sub))
}

// SeedFS returns the seed tree: the directory at seedPath when set, the
// embedded seed files otherwise.
func SeedFS(seedPath string) (fs.FS, error) {
	if seedPath != "" {
		if _, err := os.Stat(seedPath); err != nil {
			return nil, fmt.Errorf("seed path %s: %w", seedPath, err)
		}
		return os.DirFS(seedPath), nil
	}
	return EmbeddedSQL("seed")
}

// Execute runs the files of each directory in order against db. A missing
// directory is skipped. The first failing statement aborts the run.
func (s *SQLInitManager) Execute(ctx context.Context, db bun.IDB, dirs ...string) ([]ExecutionResult, error) {
	var results []ExecutionResult
	for _, dir := range dirs {
		files, err := s.GetSQLFiles(dir)
		if err != nil {
			return results, err
		}
		for _, file := range files {
			result, err := s.executeFile(ctx, db, file)
			if err != nil {
				s.logger.Error("SQL file execution failed", "file", file.Path, "error", err.Error())
				return results, fmt.Errorf("SQL file execution failed %s: %w", file.Path, err)
			}
			s.logger.Debug("SQL file executed",
				"file", result.File,
				"statements", result.Statements,
				"rows_affected", result.RowsAffected,
				"duration", result.Duration.String())
			results = append(results, result)
		}
	}
	return results, nil
}

// GetSQLFiles lists the *.sql files directly under dir, ordered by their
// numeric prefix and then by name.
func (s *SQLInitManager) GetSQLFiles(dir string) ([]SQLFileInfo, error) {
	entries, err := fs.ReadDir(s.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list SQL files in %s: %w", dir, err)
	}

	var files []SQLFileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		files = append(files, SQLFileInfo{
			Path:  path.Join(dir, e.Name()),
			Name:  e.Name(),
			Order: parseFileOrder(e.Name()),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (s *SQLInitManager) executeFile(ctx context.Context, db bun.IDB, file SQLFileInfo) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{File: file.Path}

	content, err := fs.ReadFile(s.fsys, file.Path)
	if err != nil {
		return result, fmt.Errorf("failed to read file: %w", err)
	}
	for _, stmt := range splitSQLStatements(string(content)) {
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return result, fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, err)
		}
		n, _ := res.RowsAffected()
		result.RowsAffected += n
		result.Statements++
	}
	result.Duration = time.Since(start)
	return result, nil
}

// parseFileOrder reads the NNN_ prefix of a file name. Unprefixed files run
// last.
func parseFileOrder(filename string) int {
	m := fileOrderPattern.FindStringSubmatch(filename)
	if len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 999
}

// splitSQLStatements splits a script on lines ending in ";". Blank lines
// and "--" comment lines are dropped.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
