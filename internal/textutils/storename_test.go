package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalStoreName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"株式会社 セブン-イレブン", "セブンイレブン"},
		{"（株）ＡＢＣストア", "abcストア"},
		{"ABC Store (有)", "abcstore"},
		{"㈱ローソン　新宿店", "ローソン新宿店"},
		{"ファミリーマート—渋谷", "ファミリーマート渋谷"},
		{"Acme Corp", "acmecorp"},
		{"ﾛｰｿﾝ ｴｷﾏｴ", "ローソンエキマエ"},
		{"ｶ)ﾛｰｿﾝ", "ローソン"},
		{"ﾛｰｿﾝ(ｶ", "ローソン"},
		{"ﾕ)ﾔﾏﾀﾞｼﾖｳﾃﾝ", "ヤマダシヨウテン"},
		{"ｶﾌﾞｼｷｶﾞｲｼﾔ ﾛｰｿﾝ", "ローソン"},
		{"ローソン(カフェ)", "ローソン(カフェ)"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalStoreName(tt.input))
		})
	}
}

func TestStoreNamesMatch(t *testing.T) {
	assert.True(t, StoreNamesMatch("Acme Corp", "Acme"), "rule pattern contained in name")
	assert.True(t, StoreNamesMatch("ローソン", "株式会社ローソン 新宿店"), "name contained in pattern")
	assert.True(t, StoreNamesMatch("ＡＣＭＥ", "acme"))
	assert.True(t, StoreNamesMatch("ｶ)ﾛｰｿﾝ", "株式会社ローソン"), "bank kana abbreviation")
	assert.False(t, StoreNamesMatch("Acme", "Globex"))
	assert.False(t, StoreNamesMatch("", "Acme"), "empty name never matches")
	assert.False(t, StoreNamesMatch("株式会社", "Acme"), "name reduced to empty never matches")
}
