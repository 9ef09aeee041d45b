package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()

	// One JSON object per line, including a nested object and an array
	jsonContent := `{"id": 1, "name": "O'Hara", "address": {"city": "Oslo"}, "tags": ["a", "b"]}
{"id": 2, "name": "Smith", "address": {"city": "Bergen"}, "tags": []}
`
	jsonFile := filepath.Join(tempDir, "customers.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))

	outputFile := filepath.Join(tempDir, "customers.sql")

	cmd := exec.Command("go", "run", "../../main.go", jsonFile, outputFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	expected := `insert into customers (
ID
, NAME
, CITY
)
values (
'1'
, 'OHara'
, 'Oslo'
)
GO
insert into customers (
ID
, NAME
, CITY
)
values (
'2'
, 'Smith'
, 'Bergen'
)
GO
`
	assert.Equal(t, expected, string(content))
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--table", "events", "-t", ";", "-", "-")
	cmd.Stdin = strings.NewReader(`{"kind": "click", "count": 3}` + "\n")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	assert.Equal(t, "insert into events (\nKIND\n, COUNT\n)\nvalues (\n'click'\n, '3'\n)\n;\n", stdout.String())
}

// TestCLI_ConfigFile tests loading settings from --config
func TestCLI_ConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	configFile := filepath.Join(tempDir, "json2sql.yml")
	configContent := `
output:
  terminator: ";"
naming:
  style: screaming_snake
  column_mappings:
    "id": "CUSTOMER_ID"
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cmd := exec.Command("go", "run", "../../main.go", "--config", configFile, "--table", "t", "-", "-")
	cmd.Stdin = strings.NewReader(`{"id": 7, "firstName": "Ada"}` + "\n")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	assert.Equal(t, "insert into t (\nCUSTOMER_ID\n, FIRST_NAME\n)\nvalues (\n'7'\n, 'Ada'\n)\n;\n", stdout.String())
}

// TestCLI_SkipsInvalidLines tests that a bad line does not stop the run
func TestCLI_SkipsInvalidLines(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--verbose", "--table", "t", "-", "-")
	cmd.Stdin = strings.NewReader("{\"a\": 1}\n{\"name\": \"Invalid JSON, \"age\": 30}\n{\"b\": 2}\n")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	assert.Equal(t, 2, strings.Count(stdout.String(), "insert into t"))
	assert.Contains(t, stderr.String(), "line 2 skipped")
}

// TestCLI_MissingInputFile tests the error for an input file that does not exist
func TestCLI_MissingInputFile(t *testing.T) {
	tempDir := t.TempDir()
	cmd := exec.Command("go", "run", "../../main.go",
		filepath.Join(tempDir, "missing.json"), filepath.Join(tempDir, "out.sql"))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail with a missing input file")
	assert.Contains(t, stderr.String(), "Input error: file")
}

// TestCLI_MissingArguments tests that both paths are required
func TestCLI_MissingArguments(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "only-input.json")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail without an output path")
	assert.Contains(t, stderr.String(), "<output>")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--version")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "json2sql version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	helpOutput := string(output)
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "<input> <output>")
	assert.Contains(t, helpOutput, "-t, --terminator")
	assert.Contains(t, helpOutput, "--table")
	assert.Contains(t, helpOutput, "--strict")
	assert.Contains(t, helpOutput, "--nested")
	assert.Contains(t, helpOutput, "--abort-on-capacity")
	assert.Contains(t, helpOutput, "--dsn")
}
