// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil2

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matrixorigin/mergejoin/pkg/logutil"
)

func TestContextFieldsFlow(t *testing.T) {
	defer logutil.SetupMOLogger(&logutil.LogConfig{Level: "info", Format: "console"})
	path := filepath.Join(t.TempDir(), "join.log")
	logutil.SetupMOLogger(&logutil.LogConfig{Level: "info", Format: "json", Filename: path})

	ctx := logutil.WithContextFields(context.Background(), zap.String("join", "INNER ALL"))
	Debug(ctx, "dropped")
	Info(ctx, "mergejoin: merge sorted runs",
		zap.Int("runs", 16),
		logutil.Duration("cost", time.Now().Add(-time.Millisecond)))
	Warn(context.Background(), "no fields")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, 2, len(lines))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "INNER ALL", entry["join"])
	require.Equal(t, float64(16), entry["runs"])
	require.Equal(t, "INFO", entry["level"])
	require.NotEmpty(t, entry["cost"])
	// caller is the logging site, not this package
	require.Contains(t, entry["caller"], "api_test.go")

	entry = nil
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.NotContains(t, entry, "join")
}
