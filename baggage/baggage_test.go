// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package baggage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/baggage"
)

func TestSnapshotImmutableAcrossSet(t *testing.T) {
	b, err := baggage.New()
	require.NoError(t, err)

	b, err = b.SetMember("user.id", "1")
	require.NoError(t, err)

	snapshot := b
	b2, err := b.SetMember("user.id", "2")
	require.NoError(t, err)

	v, ok := snapshot.Member("user.id")
	require.True(t, ok)
	assert.Equal(t, "1", v.Value())

	v2, ok := b2.Member("user.id")
	require.True(t, ok)
	assert.Equal(t, "2", v2.Value())
}

func TestMemberLookupIsCaseInsensitive(t *testing.T) {
	b, err := baggage.New()
	require.NoError(t, err)
	b, err = b.SetMember("User-ID", "42")
	require.NoError(t, err)

	v, ok := b.Member("user-id")
	require.True(t, ok)
	assert.Equal(t, "42", v.Value())
}

func TestDeleteMemberLeavesOriginalUnchanged(t *testing.T) {
	b, err := baggage.New()
	require.NoError(t, err)
	b, err = b.SetMember("k", "v")
	require.NoError(t, err)

	deleted := b.DeleteMember("k")

	_, ok := b.Member("k")
	assert.True(t, ok)
	_, ok = deleted.Member("k")
	assert.False(t, ok)
}

func TestNewMemberRejectsEmptyKey(t *testing.T) {
	_, err := baggage.NewMember("", "v")
	assert.ErrorIs(t, err, baggage.ErrInvalidKey)
}
