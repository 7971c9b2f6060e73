package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPriorityTable(t *testing.T) {
	csvData := `course_code,course_name,tier
CS101,Algorithms,1
MAT201,Calculus,2
,Ignored,3
FIS301,Physics,3
`
	table, err := LoadPriorityTable(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Len(t, table, 3)
	assert.Equal(t, 1, table.Tier("CS101"))
	assert.Equal(t, 2, table.Tier("MAT201"))
	assert.Equal(t, 3, table.Tier("FIS301"))
	assert.Equal(t, 1, table.Tier("UNKNOWN"))
}

func TestLoadPriorityTableSpanishHeader(t *testing.T) {
	csvData := "codigo_curso,nombre_curso,tier\nCS101,Algoritmos,2\n"
	table, err := LoadPriorityTable(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Tier("CS101"))
}

func TestLoadPriorityTableErrors(t *testing.T) {
	_, err := LoadPriorityTable(strings.NewReader("course_code,tier\nCS101,zero\n"))
	assert.Error(t, err)

	_, err = LoadPriorityTable(strings.NewReader("course_code,tier\nCS101,0\n"))
	assert.Error(t, err)

	_, err = LoadPriorityTable(strings.NewReader("name,weight\nCS101,4\n"))
	assert.Error(t, err)

	table, err := LoadPriorityTable(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoadPriorityTableFileMissingPathFallsBack(t *testing.T) {
	table, err := LoadPriorityTableFile(filepath.Join(t.TempDir(), "absent.csv"), nil)
	require.NoError(t, err)
	assert.Empty(t, table)

	table, err = LoadPriorityTableFile("", nil)
	require.NoError(t, err)
	assert.Empty(t, table)
}
