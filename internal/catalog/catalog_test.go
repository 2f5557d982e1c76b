// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleCatalog() *Catalog {
	return &Catalog{
		Activities: []Entry{{ID: "a1", Name: "Excavación"}, {ID: "a2", Name: "Moldaje"}},
		Segments:   []Entry{{ID: "t1", Name: "Tramo Norte"}},
		Workers: []Entry{
			{ID: "w1", Name: "José Muñoz", RUT: "12.345.678-9", Position: "Jornal"},
			{ID: "w2", Name: "Ana Pérez", RUT: "9.876.543-2", Position: "Carpintero"},
			{ID: "w3", Name: "Luis Soto", RUT: "11.111.111-1", Position: "Jornal"},
		},
		Supervisors: []Entry{{ID: "s1", Name: "Marta Díaz", RUT: "7.777.777-7"}},
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c := sampleCatalog()

	require.Equal(t, "Moldaje", c.ActivityName("a2"))
	require.Equal(t, "", c.ActivityName("missing"))
	require.Equal(t, "Tramo Norte", c.SegmentName("t1"))

	e, ok := c.Find(KindSupervisors, "s1")
	require.True(t, ok)
	require.Equal(t, "Marta Díaz", e.Name)

	_, ok = c.Find(KindWorkers, "")
	require.False(t, ok)
}

func TestCatalog_Positions(t *testing.T) {
	require.Equal(t, []string{"Carpintero", "Jornal"}, sampleCatalog().Positions())
}

func TestCatalog_SearchWorkers(t *testing.T) {
	c := sampleCatalog()

	got := c.SearchWorkers("jose")
	require.Len(t, got, 1)
	require.Equal(t, "w1", got[0].ID)

	got = c.SearchWorkers("PEREZ")
	require.Len(t, got, 1)
	require.Equal(t, "w2", got[0].ID)

	got = c.SearchWorkers("12345678")
	require.Len(t, got, 1)
	require.Equal(t, "w1", got[0].ID)

	require.Len(t, c.SearchWorkers(""), 3)
	require.Empty(t, c.SearchWorkers("zzz"))
}

func TestEntry_UnmarshalMongoID(t *testing.T) {
	var entries []Entry
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"x","nombre":"A"},{"id":"y","nombre":"B"}]`), &entries))
	require.Equal(t, "x", entries[0].ID)
	require.Equal(t, "y", entries[1].ID)
}

func TestEntry_Validate(t *testing.T) {
	require.NoError(t, Entry{Name: "Excavación"}.Validate(KindActivities))
	require.Error(t, Entry{}.Validate(KindActivities))
	require.Error(t, Entry{Name: "Ana"}.Validate(KindSupervisors))
	require.Error(t, Entry{Name: "Ana", RUT: "1-9"}.Validate(KindWorkers))
	require.NoError(t, Entry{Name: "Ana", RUT: "1-9", Position: "Jornal"}.Validate(KindWorkers))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("segments")
	require.NoError(t, err)
	require.Equal(t, KindSegments, k)

	_, err = ParseKind("tools")
	require.Error(t, err)
}
