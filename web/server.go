package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/m3_browser/vfs"
)

var ServerDirectory vfs.Directory

func NewRouter(d vfs.Directory, webPath string) http.Handler {
	ServerDirectory = d

	r := mux.NewRouter()
	r.HandleFunc("/action/{file:.+}/{action}", HandlerActionFile)
	r.HandleFunc("/json/files", HandlerAjaxFiles)
	r.HandleFunc("/json/file/{file:.+}", HandlerAjaxFile)
	r.HandleFunc("/dump/file/{file:.+}", HandlerDumpFile)
	r.HandleFunc("/ws/status", HandlerStatusWebsocket)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
}

func StartServer(addr string, d vfs.Directory, webPath string) error {
	h := handlers.LoggingHandler(os.Stdout, NewRouter(d, webPath))

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
