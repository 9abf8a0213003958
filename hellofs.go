/*
 * hellofs - a writable single-file FUSE filesystem
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"os/user"
	"strconv"
	"syscall"

	"hellofs/config"
	"hellofs/fs"

	"github.com/jacobsa/fuse"
	"github.com/sirupsen/logrus"
)

var fMountPoint = flag.String("mount", "", "Path to mount point.")
var fConfig = flag.String("config", "", "Path to optional config file.")

func main() {

	flag.Parse()

	logger := logrus.New()

	if *fMountPoint == "" {
		logger.Fatal("Must provide mount point via '--mount'")
	}

	cfg, err := config.Load(*fConfig)
	if err != nil {
		logger.Fatalf("error loading config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("bad log level %q: %v", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	user, err := user.Current()
	if err != nil {
		panic(err)
	}

	uid, err := strconv.ParseUint(user.Uid, 10, 32)
	if err != nil {
		panic(err)
	}
	gid, err := strconv.ParseUint(user.Gid, 10, 32)
	if err != nil {
		panic(err)
	}

	helloFS, err := fs.NewHelloFS(uint32(uid), uint32(gid), logger)
	if err != nil {
		logger.Fatalf("error creating filesystem: %v", err)
	}

	mountCfg := &fuse.MountConfig{
		FSName:                  cfg.FSName,
		ReadOnly:                cfg.ReadOnly,
		DisableWritebackCaching: true,
		ErrorLogger: stdlog.New(
			logger.WriterLevel(logrus.ErrorLevel), "fuse: ", 0),
	}
	if cfg.AllowOther {
		mountCfg.Options = map[string]string{"allow_other": ""}
	}
	if cfg.FuseDebug {
		mountCfg.DebugLogger = stdlog.New(
			logger.WriterLevel(logrus.DebugLevel), "fuse: ", 0)
	}

	mfs, err := fuse.Mount(*fMountPoint, helloFS, mountCfg)
	if err != nil {
		logger.Fatalf("error mounting %s: %v", *fMountPoint, err)
	}
	logger.Infof("mounted %s at %s", cfg.FSName, *fMountPoint)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Infof("unmounting %s", *fMountPoint)
		if err := fuse.Unmount(*fMountPoint); err != nil {
			logger.Errorf("error unmounting %s: %v", *fMountPoint, err)
		}
	}()

	if err = mfs.Join(context.Background()); err != nil {
		logger.Fatalf("error waiting for filesystem: %v", err)
	}
}
