package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(name string) PropertySource {
	return NewMapSource(name, map[string]interface{}{"source": name})
}

// TestPropertySources_AddFirstLast 测试首尾插入
func TestPropertySources_AddFirstLast(t *testing.T) {
	p := NewPropertySources()
	p.AddLast(src("b"))
	p.AddFirst(src("a"))
	p.AddLast(src("c"))

	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
	assert.Equal(t, 3, p.Len())
}

// TestPropertySources_AddRelative 测试相对插入
func TestPropertySources_AddRelative(t *testing.T) {
	p := NewPropertySources()
	p.AddLast(src("a"))
	p.AddLast(src("c"))

	require.NoError(t, p.AddAfter("a", src("b")))
	require.NoError(t, p.AddBefore("a", src("first")))
	assert.Equal(t, []string{"first", "a", "b", "c"}, p.Names())

	assert.Error(t, p.AddAfter("missing", src("x")))
	assert.Error(t, p.AddBefore("a", src("a")))
	assert.False(t, p.Contains("x"))
}

// TestPropertySources_DuplicateNameLastWriteWins 同名数据源后写入者覆盖
func TestPropertySources_DuplicateNameLastWriteWins(t *testing.T) {
	p := NewPropertySources()
	p.AddLast(src("env"))
	p.AddLast(NewMapSource("dup", map[string]interface{}{"v": 1}))
	p.AddFirst(NewMapSource("dup", map[string]interface{}{"v": 2}))

	assert.Equal(t, []string{"dup", "env"}, p.Names())
	got, ok := p.Get("dup")
	require.True(t, ok)
	assert.Equal(t, 2, got.Properties()["v"])
}

// TestPropertySources_ReplaceRemove 测试替换与删除
func TestPropertySources_ReplaceRemove(t *testing.T) {
	p := NewPropertySources()
	p.AddLast(src("a"))
	p.AddLast(src("b"))

	require.NoError(t, p.Replace("a", NewMapSource("a", map[string]interface{}{"k": "new"})))
	got, _ := p.Get("a")
	assert.Equal(t, "new", got.Properties()["k"])
	assert.Equal(t, []string{"a", "b"}, p.Names())

	assert.Error(t, p.Replace("zzz", src("zzz")))

	removed := p.Remove("a")
	require.NotNil(t, removed)
	assert.Equal(t, "a", removed.Name())
	assert.Nil(t, p.Remove("a"))
	assert.Equal(t, []string{"b"}, p.Names())
}

// TestPropertySources_SourcesIsCopy 返回副本
func TestPropertySources_SourcesIsCopy(t *testing.T) {
	p := NewPropertySources()
	p.AddLast(src("a"))

	list := p.Sources()
	list[0] = src("changed")
	assert.Equal(t, []string{"a"}, p.Names())
}
