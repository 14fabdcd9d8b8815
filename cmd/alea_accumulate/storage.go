package main

import (
	"io"
	"os"

	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/archive"
	"github.com/timescale/tsbs-alea/pkg/serialize"
	"go.uber.org/multierr"
)

// resultKey is the group results are stored under in YAML trees.
const resultKey = "result"

func writeResult(w io.Writer, conf *ResultConfig, r alea.Result) (err error) {
	if conf.Format == FormatYAML {
		tree := serialize.NewTree()
		if err := r.Serialize(tree, resultKey); err != nil {
			return err
		}
		_, err := tree.WriteTo(w)
		return err
	}
	if conf.Compress {
		sw := archive.SnappyWriter(w)
		defer func() { err = multierr.Append(err, sw.Close()) }()
		w = sw
	}
	enc, err := archive.NewEncoder(conf.Format, w)
	if err != nil {
		return err
	}
	return serialize.Save(enc, r)
}

func readResult(rd io.Reader, conf *ResultConfig) (alea.Result, error) {
	r, err := newResult(conf)
	if err != nil {
		return nil, err
	}
	if conf.Format == FormatYAML {
		tree, err := serialize.ReadTree(rd)
		if err != nil {
			return nil, err
		}
		return r, r.Deserialize(tree, resultKey)
	}
	if conf.Compress {
		rd = archive.SnappyReader(rd)
	}
	dec, err := archive.NewDecoder(conf.Format, rd)
	if err != nil {
		return nil, err
	}
	return r, serialize.Load(dec, r)
}

func saveResult(path string, conf *ResultConfig, r alea.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return writeResult(f, conf, r)
}

func loadResult(path string, conf *ResultConfig) (alea.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readResult(f, conf)
}
