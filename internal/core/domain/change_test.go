package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/strata/internal/core/domain"
)

func TestShouldReanalyzeLLM(t *testing.T) {
	t.Parallel()

	analyzed := &domain.CacheEntry{LLMAnalyzed: true}
	fresh := &domain.CacheEntry{}

	tests := []struct {
		name  string
		entry *domain.CacheEntry
		ct    domain.ChangeType
		want  bool
	}{
		{name: "never analyzed cosmetic", entry: fresh, ct: domain.ChangeCosmetic, want: true},
		{name: "nil entry", entry: nil, ct: domain.ChangeStatic, want: true},
		{name: "cosmetic", entry: analyzed, ct: domain.ChangeCosmetic, want: false},
		{name: "static", entry: analyzed, ct: domain.ChangeStatic, want: false},
		{name: "semantic", entry: analyzed, ct: domain.ChangeSemantic, want: true},
		{name: "critical", entry: analyzed, ct: domain.ChangeCritical, want: true},
		{name: "unknown", entry: analyzed, ct: domain.ChangeType("WEIRD"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.ShouldReanalyzeLLM(tt.entry, tt.ct))
		})
	}
}

func TestChangeType_Rank(t *testing.T) {
	t.Parallel()

	order := []domain.ChangeType{
		domain.ChangeNone,
		domain.ChangeCosmetic,
		domain.ChangeStatic,
		domain.ChangeSemantic,
		domain.ChangeCritical,
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank())
	}
	assert.True(t, domain.ChangeCritical.Cascades())
	assert.False(t, domain.ChangeSemantic.Cascades())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := domain.Fingerprint([]byte("hello"))
	assert.Len(t, a, domain.FingerprintLen)
	assert.Equal(t, a, domain.FingerprintString("hello"))
	assert.NotEqual(t, a, domain.Fingerprint([]byte("hello!")))

	assert.Equal(t, a, domain.CombinedFingerprint([]byte("hello"), a, ""))
	assert.NotEqual(t, a, domain.CombinedFingerprint([]byte("hello"), a, "meta"))
}
