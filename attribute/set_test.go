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

package attribute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/attribute"
)

func TestNewSetDedupAndSort(t *testing.T) {
	s, err := attribute.NewSet(
		attribute.Key("b").String("2"),
		attribute.Key("a").String("1"),
		attribute.Key("a").String("override"),
	)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	kvs := s.ToSlice()
	assert.Equal(t, attribute.Key("a"), kvs[0].Key)
	assert.Equal(t, "override", kvs[0].Value.AsString())
	assert.Equal(t, attribute.Key("b"), kvs[1].Key)
}

func TestNewSetEmptyValueRemovesKey(t *testing.T) {
	s, err := attribute.NewSet(attribute.Key("a").String(""), attribute.Key("b").String("x"))
	require.NoError(t, err)
	assert.False(t, s.HasValue("a"))
	assert.True(t, s.HasValue("b"))
}

func TestNewSetRejectsEmptyKey(t *testing.T) {
	_, err := attribute.NewSet(attribute.Key("").String("x"))
	assert.ErrorIs(t, err, attribute.ErrInvalidAttribute)
}

func TestSetEquals(t *testing.T) {
	a, _ := attribute.NewSet(attribute.Key("x").Int(1), attribute.Key("y").Int(2))
	b, _ := attribute.NewSet(attribute.Key("y").Int(2), attribute.Key("x").Int(1))
	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Equivalent(), b.Equivalent())

	c, _ := attribute.NewSet(attribute.Key("x").Int(1))
	assert.False(t, a.Equals(c))
}

func TestSetFilter(t *testing.T) {
	s, _ := attribute.NewSet(attribute.Key("keep").Int(1), attribute.Key("drop").Int(2))
	filtered, dropped := s.Filter(func(kv attribute.KeyValue) bool { return kv.Key == "keep" })
	require.Equal(t, 1, filtered.Len())
	require.Len(t, dropped, 1)
	assert.Equal(t, attribute.Key("drop"), dropped[0].Key)
}

func TestEmptySetIsStableKey(t *testing.T) {
	a := attribute.Empty()
	b, err := attribute.NewSet()
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}
