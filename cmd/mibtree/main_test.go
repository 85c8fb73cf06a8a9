package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibtree/internal/testutil"
	"github.com/golangsnmp/mibtree/mib"
)

const (
	vendorOID  = "1.3.6.1.4.1.9999"
	productOID = "1.3.6.1.4.1.9999.1.4"
)

func vendorText() string {
	return testutil.Module("VENDOR-MIB").
		Import("SNMPv2-SMI", "enterprises").
		ModuleIdentity("vendorMIB", "enterprises", 9999).
		Identifier("vendorObjects", "vendorMIB", 1).
		String()
}

func productText(syntax string) string {
	return testutil.Module("PRODUCT-MIB").
		Import("VENDOR-MIB", "vendorObjects").
		ObjectType(testutil.ObjectTypeDef{
			Name:   "productCount",
			Parent: "vendorObjects",
			Arcs:   []uint32{4},
			Syntax: syntax,
			Access: "read-only",
		}).
		String()
}

// workspace creates a directory of module files and makes it the working
// directory so config discovery starts there.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	cmd := a.rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--color=off"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var coded *exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}
	if err != nil {
		return exitError
	}
	return exitOK
}

func TestResolveCommandText(t *testing.T) {
	dir := workspace(t, map[string]string{
		"mibs/VENDOR-MIB":  vendorText(),
		"mibs/PRODUCT-MIB": productText("Integer32"),
	})

	out, err := execute(t, "resolve", filepath.Join(dir, "mibs"))
	require.NoError(t, err)
	assert.Contains(t, out, "resolved")
	assert.Contains(t, out, "from 2 records")
}

func TestResolveCommandUnresolved(t *testing.T) {
	dir := workspace(t, map[string]string{"PRODUCT-MIB": productText("Integer32")})

	out, err := execute(t, "resolve", dir)
	require.Error(t, err)
	assert.Equal(t, exitUnresolved, exitCode(err))
	assert.ErrorIs(t, err, mib.ErrUnresolved)
	assert.Contains(t, out, "failed 1 unresolved from 1 records")

	assert.Equal(t, exitUnresolved, run([]string{"--color=off", "resolve", dir}))
	assert.Equal(t, exitError, run([]string{"resolve", filepath.Join(dir, "missing")}))
}

func TestResolveCommandJSON(t *testing.T) {
	dir := workspace(t, map[string]string{
		"VENDOR-MIB":  vendorText(),
		"PRODUCT-MIB": productText("Integer32"),
	})

	out, err := execute(t, "resolve", "-o", "json", "--forest", dir)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Records)
	assert.Equal(t, "done", rep.Phase)
	assert.Equal(t, 1, rep.Attempts)
	assert.Empty(t, rep.Error)
	assert.NotEmpty(t, rep.Forest)
	assert.Positive(t, rep.Nodes)
}

func TestResolveCommandExcludeMissingFromConfig(t *testing.T) {
	dir := workspace(t, map[string]string{
		"mibs/VENDOR-MIB": vendorText(),
		"mibs/BROKEN-MIB": testutil.Module("BROKEN-MIB").
			Import("GONE-MIB", "gone").
			Identifier("brokenNode", "gone", 1).
			String(),
		"mibtree.toml": "[sources]\npaths = [\"mibs\"]\n\n[resolve]\nexclude_missing = true\n",
	})
	_ = dir

	out, err := execute(t, "resolve", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "module: BROKEN-MIB")
	assert.Contains(t, out, "- GONE-MIB")
	assert.Contains(t, out, "attempts: 2")
}

func TestResolveCommandIgnore(t *testing.T) {
	first := testutil.Module("DUP-MIB").Identifier("node", "enterprises", 1).String()
	second := testutil.Module("DUP-MIB").Identifier("node", "enterprises", 2).String()
	dir := workspace(t, map[string]string{"a.mib": first, "b.mib": second})

	out, err := execute(t, "resolve", "-o", "json", dir)
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotEmpty(t, rep.Diagnostics)
	codes := make([]string, 0, len(rep.Diagnostics))
	for _, d := range rep.Diagnostics {
		codes = append(codes, d.Code)
	}

	var ignore []string
	for _, c := range codes {
		ignore = append(ignore, "--ignore", c)
	}
	out, err = execute(t, append(append([]string{"resolve", "-o", "json"}, ignore...), dir)...)
	require.NoError(t, err)
	rep = report{}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Empty(t, rep.Diagnostics)
}

func TestTreeCommand(t *testing.T) {
	dir := workspace(t, map[string]string{
		"VENDOR-MIB":  vendorText(),
		"PRODUCT-MIB": productText("Integer32"),
	})

	out, err := execute(t, "tree", "--root", "VENDOR-MIB::vendorMIB", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vendorMIB(9999)  "+vendorOID))
	assert.Contains(t, out, "vendorObjects(1)")
	assert.Contains(t, out, "productCount(4)  "+productOID+"  PRODUCT-MIB")

	out, err = execute(t, "tree", "--root", vendorOID, "--max-depth", "1", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 more)")
	assert.NotContains(t, out, "productCount")

	out, err = execute(t, "tree", "--root", vendorOID, "--max-depth", "1", "-o", "json", dir)
	require.NoError(t, err)
	var roots []mib.Node
	require.NoError(t, json.Unmarshal([]byte(out), &roots))
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.Empty(t, roots[0].Children[0].Children)

	_, err = execute(t, "tree", "--root", "1.3.6.1.4.1.9999.7", dir)
	assert.ErrorContains(t, err, "not found")
}

func TestGetCommand(t *testing.T) {
	dir := workspace(t, map[string]string{
		"VENDOR-MIB":  vendorText(),
		"PRODUCT-MIB": productText("Integer32"),
	})

	out, err := execute(t, "get", productOID, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCT-MIB::productCount")
	assert.Contains(t, out, "syntax: Integer32")

	out, err = execute(t, "get", productOID+".0", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nearest ancestor")

	out, err = execute(t, "get", "-o", "json", "vendorObjects", dir)
	require.NoError(t, err)
	var nodes []mib.Node
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, vendorOID+".1", nodes[0].OID)
	assert.Empty(t, nodes[0].Children)

	_, err = execute(t, "get", "NOPE-MIB::nothing", dir)
	assert.ErrorContains(t, err, "not found")
}

func TestConflictsCommand(t *testing.T) {
	dir := workspace(t, map[string]string{
		"VENDOR-MIB": vendorText(),
		"a.mib":      productText("Integer32"),
		"b.mib":      productText("Counter32"),
	})

	out, err := execute(t, "conflicts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCT-MIB::productCount")
	assert.Contains(t, out, `syntax: "Integer32" != "Counter32"`)

	out, err = execute(t, "conflicts", "-o", "json", filepath.Join(dir, "VENDOR-MIB"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestExtractCommand(t *testing.T) {
	dir := workspace(t, map[string]string{"VENDOR-MIB": vendorText()})

	out, err := execute(t, "extract", "-o", "yaml", filepath.Join(dir, "VENDOR-MIB"))
	require.NoError(t, err)
	assert.Contains(t, out, "name: VENDOR-MIB")
	assert.Contains(t, out, "name: vendorObjects")

	target := filepath.Join(dir, "records.json")
	_, err = execute(t, "extract", "-f", target, filepath.Join(dir, "VENDOR-MIB"))
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var records []mib.Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "VENDOR-MIB", records[0].Name)
}

func TestStoreCommands(t *testing.T) {
	dir := workspace(t, map[string]string{
		"VENDOR-MIB":  vendorText(),
		"PRODUCT-MIB": productText("Integer32"),
	})
	storeDir := filepath.Join(dir, "store")
	st := func(args ...string) (string, error) {
		return execute(t, append([]string{"store", "--store-dir", storeDir}, args...)...)
	}

	out, err := st("add", filepath.Join(dir, "VENDOR-MIB"), filepath.Join(dir, "PRODUCT-MIB"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "stored"))

	out, err = st("add", filepath.Join(dir, "VENDOR-MIB"))
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	out, err = st("list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "not resolved"))

	_, err = st("get", "vendorObjects")
	assert.ErrorContains(t, err, "no saved forest")

	out, err = st("resolve")
	require.NoError(t, err)
	assert.Contains(t, out, "from 2 records")

	out, err = st("list", "-o", "json")
	require.NoError(t, err)
	var files []storedFile
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "PRODUCT-MIB", files[0].Name)
	assert.True(t, files[0].Resolved)
	assert.Equal(t, []string{"PRODUCT-MIB"}, files[0].Modules)

	out, err = st("get", productOID)
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCT-MIB::productCount")

	out, err = st("show", "VENDOR-MIB")
	require.NoError(t, err)
	assert.Equal(t, vendorText(), out)

	_, err = st("remove", "VENDOR-MIB")
	require.NoError(t, err)
	_, err = st("remove", "VENDOR-MIB")
	assert.ErrorContains(t, err, "not found")

	out, err = st("resolve")
	require.Error(t, err)
	assert.Equal(t, exitUnresolved, exitCode(err))
	assert.Contains(t, out, "failed")

	_, err = st("get", productOID)
	assert.ErrorContains(t, err, "no saved forest", "a failed run drops the saved forest")
}

func TestPathsCommand(t *testing.T) {
	dir := workspace(t, nil)

	out, err := execute(t, "paths", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, dir+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	workspace(t, nil)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mibtree "))
}
