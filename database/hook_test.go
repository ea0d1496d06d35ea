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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
	fields  [][]interface{}
}

func (l *recordingLogger) record(msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) SetLevel(LogLevel)                       {}
func (l *recordingLogger) Debug(msg string, fields ...interface{}) { l.record(msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...interface{})  { l.record(msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interface{})  { l.record(msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interface{}) { l.record(msg, fields) }

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewSlowQueryHook(100*time.Millisecond, logger)
	ctx := context.Background()

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	if len(logger.entries) != 0 {
		t.Fatalf("fast query logged: %v", logger.entries)
	}

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT * FROM dish", StartTime: time.Now().Add(-time.Second)})
	if len(logger.entries) != 1 {
		t.Fatalf("slow query not logged")
	}

	EnableQueryLogSilent(true)
	defer EnableQueryLogSilent(false)
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT * FROM dish", StartTime: time.Now().Add(-time.Second)})
	if len(logger.entries) != 1 {
		t.Fatalf("silenced hook still logged")
	}
}

func TestToFields(t *testing.T) {
	fields := toFields([]interface{}{"dish_id", 4, "op", "save", "dangling"})
	if fields["dish_id"] != 4 || fields["op"] != "save" || fields["extra"] != "dangling" {
		t.Fatalf("fields = %v", fields)
	}
	if len(toFields(nil)) != 0 {
		t.Fatalf("toFields(nil) not empty")
	}
}
