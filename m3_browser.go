package main

import (
	"flag"
	"log"

	"github.com/mogaika/m3_browser/config"
	"github.com/mogaika/m3_browser/vfs"
	"github.com/mogaika/m3_browser/web"

	_ "github.com/mogaika/m3_browser/pack/m3"
)

func main() {
	var flags config.Flags
	var configPath string
	var parsecheck bool
	flag.StringVar(&flags.Listen, "i", "", "Address of server (default "+config.DefaultListen+")")
	flag.StringVar(&flags.Dir, "dir", "", "Path to folder with .m3 models")
	flag.StringVar(&flags.Iso, "iso", "", "Path to UDF disc image with .m3 models")
	flag.StringVar(&flags.Encoding, "encoding", "", "Charmap of model strings, see config.ListEncodings")
	flag.StringVar(&flags.LogDir, "logdir", "", "Write per model parse logs into this folder")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.BoolVar(&parsecheck, "parsecheck", false, "Parse every model and report failures instead of serving")
	flag.Parse()

	var cfg config.Config
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if err := cfg.Resolve(flags); err != nil {
		log.Fatal(err)
	}

	var root vfs.Directory
	if cfg.Iso != "" {
		iso, err := vfs.NewIsoDriver(vfs.NewDirectoryDriverFile(cfg.Iso))
		if err != nil {
			log.Fatal(err)
		}
		root = iso
	} else if cfg.Dir != "" {
		root = vfs.NewDirectoryDriver(cfg.Dir)
	} else {
		flag.PrintDefaults()
		return
	}

	if parsecheck {
		if failed := parseCheck(root); failed != 0 {
			log.Fatalf("[parsecheck] %d models failed", failed)
		}
		return
	}

	if err := web.StartServer(cfg.Listen, root, "web"); err != nil {
		log.Fatal(err)
	}
}
