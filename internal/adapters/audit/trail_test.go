package audit_test

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/audit"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestProvider_WritesJSONLines(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	trail, err := audit.NewProvider(mocks.NewMockLogger(ctrl)).Open(root, domain.AuditConfig{Enabled: true, MaxSizeMB: 1})
	require.NoError(t, err)

	trail.Record(t.Context(), domain.AuditRecord{
		Action:     domain.AuditCascade,
		FilePath:   "b.js",
		Trigger:    "a.js",
		OldVersion: 1,
		NewVersion: 2,
		Success:    true,
	})
	trail.Record(t.Context(), domain.AuditRecord{Action: domain.AuditInvalidate, FilePath: "a.js", Success: true})
	require.NoError(t, trail.Close())

	f, err := os.Open(domain.AuditLogPath(root))
	require.NoError(t, err)
	defer f.Close()

	var records []domain.AuditRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec domain.AuditRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())

	require.Len(t, records, 2)
	assert.Equal(t, domain.AuditCascade, records[0].Action)
	assert.Equal(t, "a.js", records[0].Trigger)
	assert.Equal(t, 2, records[0].NewVersion)
	assert.False(t, records[0].Time.IsZero())
	assert.Equal(t, "a.js", records[1].FilePath)
}

func TestProvider_Disabled(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	trail, err := audit.NewProvider(mocks.NewMockLogger(ctrl)).Open(root, domain.AuditConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, audit.Nop{}, trail)

	trail.Record(t.Context(), domain.AuditRecord{Action: domain.AuditInvalidate})
	require.NoError(t, trail.Close())
	assert.NoFileExists(t, domain.AuditLogPath(root))
}
