package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "novel", VerdictNovel.String())
	assert.Equal(t, "exact-duplicate", VerdictExactDuplicate.String())
	assert.Equal(t, "near-duplicate", VerdictNearDuplicate.String())
}

func TestVerdict_IsDuplicate(t *testing.T) {
	assert.False(t, VerdictNovel.IsDuplicate())
	assert.True(t, VerdictExactDuplicate.IsDuplicate())
	assert.True(t, VerdictNearDuplicate.IsDuplicate())
}

func TestChangeSummary_IsEmpty(t *testing.T) {
	assert.True(t, ChangeSummary{}.IsEmpty())
	assert.True(t, ChangeSummary{WhoIsAffected: []string{"SMEs"}}.IsEmpty())
	assert.False(t, ChangeSummary{WhatChanged: []string{"deadline moved"}}.IsEmpty())
}
