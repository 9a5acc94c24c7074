package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawRecords_Basic(t *testing.T) {
	csvData := "id,title,genres,keywords,overview,budget\n" +
		"1,Movie A,scifi,space,deep space crew,100\n" +
		"2,Movie B,drama,family,a family story,200\n"

	recs, err := parseRawRecords(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// 无关列被忽略，四个必填列被投影出来
	assert.Equal(t, "Movie A", *recs[0].Title)
	assert.Equal(t, "scifi", *recs[0].Genres)
	assert.Equal(t, "space", *recs[0].Keywords)
	assert.Equal(t, "deep space crew", *recs[0].Overview)
}

func TestParseRawRecords_MissingRequiredColumn(t *testing.T) {
	// 缺少 overview 列
	csvData := "title,genres,keywords\nMovie A,scifi,space\n"

	_, err := parseRawRecords(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overview")
}

func TestParseRawRecords_ShortRowIsMissing(t *testing.T) {
	// 第二行只有两列：keywords 与 overview 记为缺失（nil）
	csvData := "title,genres,keywords,overview\n" +
		"Movie A,scifi\n"

	recs, err := parseRawRecords(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.NotNil(t, recs[0].Title)
	assert.NotNil(t, recs[0].Genres)
	assert.Nil(t, recs[0].Keywords)
	assert.Nil(t, recs[0].Overview)
}

func TestParseRawRecords_EmptyStringSurvives(t *testing.T) {
	// 空字符串是值存在，不是缺失
	csvData := "title,genres,keywords,overview\n" +
		"Movie A,,,\n"

	recs, err := parseRawRecords(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NotNil(t, recs[0].Genres)
	assert.Equal(t, "", *recs[0].Genres)
	require.NotNil(t, recs[0].Overview)
	assert.Equal(t, "", *recs[0].Overview)
}

func TestParseRawRecords_QuotedFields(t *testing.T) {
	csvData := "title,genres,keywords,overview\n" +
		`"Movie, The",drama,"life, death","a story about ""life"""` + "\n"

	recs, err := parseRawRecords(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Movie, The", *recs[0].Title)
	assert.Equal(t, "life, death", *recs[0].Keywords)
	assert.Equal(t, `a story about "life"`, *recs[0].Overview)
}

func TestParseRawRecords_HeaderOnly(t *testing.T) {
	recs, err := parseRawRecords(strings.NewReader("title,genres,keywords,overview\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseRawRecords_EmptyInput(t *testing.T) {
	_, err := parseRawRecords(strings.NewReader(""))
	assert.Error(t, err)
}
