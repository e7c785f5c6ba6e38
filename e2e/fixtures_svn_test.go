//go:build e2e && unix

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fakeSVN mimics svn: paths containing "fail" are rejected, "slow" paths take
// two seconds and update prints a revision line.
const fakeSVN = `#!/bin/sh
case "$2" in *slow*) sleep 2 ;; esac
case "$2" in
*fail*)
	echo "svn: E155007: '$2' is not a working copy" >&2
	exit 1
	;;
esac
if [ "$1" = "update" ]; then
	printf "Updating '%s':\nAt revision 42.\n" "$2"
fi
exit 0
`

type pathEntry struct {
	Path                string `json:"path"`
	IncludeInOperations bool   `json:"includeInOperations"`
}

// CreateTestWorkspace creates a temporary workspace with the fake svn client
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tf.workspace = tf.t.TempDir()
	if err := os.MkdirAll(filepath.Dir(tf.SVNScript()), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(tf.SVNScript(), []byte(fakeSVN), 0755); err != nil {
		return "", err
	}
	return tf.workspace, nil
}

// SVNScript is the fake svn executable inside the workspace
func (tf *TUITestFramework) SVNScript() string {
	return filepath.Join(tf.workspace, "bin", "svn")
}

// PathsFile is the path list handed to svnbatch
func (tf *TUITestFramework) PathsFile() string {
	return filepath.Join(tf.workspace, "paths.json")
}

// CreateWorkingCopy creates a directory that stands in for a checkout
func (tf *TUITestFramework) CreateWorkingCopy(name string) (string, error) {
	dir := filepath.Join(tf.workspace, "wc", name)
	if err := os.MkdirAll(filepath.Join(dir, ".svn"), 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// WritePaths writes the path list file
func (tf *TUITestFramework) WritePaths(entries ...pathEntry) error {
	doc := struct {
		List []pathEntry `json:"list"`
	}{List: entries}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(tf.PathsFile(), data, 0644)
}

// ReadPaths reads the path list file back
func (tf *TUITestFramework) ReadPaths() ([]pathEntry, error) {
	data, err := os.ReadFile(tf.PathsFile())
	if err != nil {
		return nil, err
	}
	var doc struct {
		List []pathEntry `json:"list"`
	}
	err = json.Unmarshal(data, &doc)
	return doc.List, err
}
