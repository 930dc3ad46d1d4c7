package web

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/m3_browser/pack"
	"github.com/mogaika/m3_browser/status"
	"github.com/mogaika/m3_browser/vfs"
	"github.com/mogaika/m3_browser/webutils"
)

const MODEL_EXTENSION = ".m3"

func HandlerAjaxFiles(w http.ResponseWriter, r *http.Request) {
	if files, err := vfs.FindFiles(ServerDirectory, MODEL_EXTENSION); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

// loadInstance parses file with its registered handler. Files without one are 404.
func loadInstance(w http.ResponseWriter, file string) (interface{}, bool) {
	if !pack.HasHandler(file) {
		http.Error(w, "no handler for "+file, http.StatusNotFound)
		return nil, false
	}
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("[web] Error getting file '%s': %v", file, err)
		webutils.WriteError(w, err)
		return nil, false
	}
	return data, true
}

func HandlerAjaxFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, ok := loadInstance(w, file)
	if !ok {
		return
	}

	if m, ok := data.(pack.Marshaler); ok {
		if v, err := m.Marshal(); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to marshal '%s'", file))
		} else {
			webutils.WriteJson(w, v)
		}
	} else {
		webutils.WriteJson(w, data)
	}
}

func HandlerDumpFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := vfs.DirectoryGetFile(ServerDirectory, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	reader, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Error getting file reader"))
		return
	}
	defer f.Close()
	webutils.WriteFile(w, reader, f.Name())
}

func HandlerActionFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	action := mux.Vars(r)["action"]
	data, ok := loadInstance(w, file)
	if !ok {
		return
	}

	actioner, ok := data.(pack.HttpActioner)
	if !ok {
		webutils.WriteError(w, errors.Errorf("File %s has no actions", file))
		return
	}
	if err := actioner.HttpAction(w, r, action); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Action %q on %s failed", action, file))
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
