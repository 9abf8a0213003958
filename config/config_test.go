/*
 * hellofs - a writable single-file FUSE filesystem
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/jacobsa/ogletest"
)

func TestConfig(t *testing.T) { RunTests(t) }

type ConfigTest struct{}

func init() { RegisterTestSuite(&ConfigTest{}) }

func (t *ConfigTest) Defaults() {
	cfg, err := Load("")
	AssertEq(nil, err)

	ExpectEq("hellofs", cfg.FSName)
	ExpectFalse(cfg.ReadOnly)
	ExpectFalse(cfg.AllowOther)
	ExpectFalse(cfg.FuseDebug)
	ExpectEq("info", cfg.LogLevel)
}

func (t *ConfigTest) FileValues() {
	dir, err := os.MkdirTemp("", "hellofs_config")
	AssertEq(nil, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "hellofs.yaml")
	contents := "fs_name: scratch\nread_only: true\nlog_level: debug\n"
	AssertEq(nil, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	AssertEq(nil, err)

	ExpectEq("scratch", cfg.FSName)
	ExpectTrue(cfg.ReadOnly)
	ExpectEq("debug", cfg.LogLevel)

	// Defaults still apply to fields the file does not mention.
	ExpectFalse(cfg.AllowOther)
}

func (t *ConfigTest) EnvironmentOverridesFile() {
	dir, err := os.MkdirTemp("", "hellofs_config")
	AssertEq(nil, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "hellofs.yaml")
	AssertEq(nil, os.WriteFile(path, []byte("fs_name: scratch\n"), 0644))

	AssertEq(nil, os.Setenv("HELLOFS_FS_NAME", "from-env"))
	defer os.Unsetenv("HELLOFS_FS_NAME")

	cfg, err := Load(path)
	AssertEq(nil, err)

	ExpectEq("from-env", cfg.FSName)
}

func (t *ConfigTest) MissingFile() {
	_, err := Load(filepath.Join(os.TempDir(), "hellofs-no-such-file.yaml"))
	ExpectNe(nil, err)
}
