/*
   OqtaDisk - Apple II Disk II emulator
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaDisk.

   OqtaDisk is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaDisk is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaDisk. If not, see <http://www.gnu.org/licenses/>.
*/

package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/daemon"
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
)

// maximum size of an uploaded disk image
const maxUploadSize = base.NibImageLength + 1

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr, repo string, d *daemon.Daemon) APIServer {
	return newAPI(addr, repo, d)
}

//
func newAPI(addr, repo string, d *daemon.Daemon) *api {
	return &api{
		address:       addr,
		repository:    repo,
		daemon:        d,
		longPollQueue: make(chan chan *Change),
		stop:          make(chan bool),
	}
}

//
type api struct {
	address    string
	repository string
	daemon     *daemon.Daemon
	server     *http.Server
	//
	longPollQueue chan chan *Change
	stop          chan bool
}

//
func (a *api) Serve() error {

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8888", a.address)
	}

	log.Infof("OqtaDisk API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: a.router()}

	go a.watchDaemon()

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) router() *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	drive := "/drive/{slot:[1-7]}/{drive:[1-2]}"

	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "watch", "GET", "/watch", a.watch)
	addRoute(router, "ls", "GET", "/list", a.list)
	addRoute(router, "load", "PUT", drive, a.load)
	addRoute(router, "unload", "GET", drive+"/unload", a.unload)
	addRoute(router, "save", "GET", drive, a.save)
	addRoute(router, "dump", "GET", drive+"/dump", a.dump)
	addRoute(router, "drivels", "GET", drive+"/list", a.driveList)
	addRoute(router, "protect", "PUT", drive+"/protect", a.protect)
	addRoute(router, "resync", "PUT", "/resync", a.resync)

	return router
}

//
func (a *api) Stop() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	if a.server != nil {
		log.Info("API server stopping...")
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

// getSlotDrive returns the slot and 1-based drive number from the request
// path, or -1 for both if invalid. In that case, an error reply has already
// been sent.
func getSlotDrive(w http.ResponseWriter, req *http.Request) (int, int) {
	vars := mux.Vars(req)
	slot, err := strconv.Atoi(vars["slot"])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, -1
	}
	drive, err := strconv.Atoi(vars["drive"])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1, -1
	}
	return slot, drive
}

// errorStatus maps errors from the daemon and the media layer to HTTP status
// codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, daemon.ErrBusy):
		return http.StatusLocked
	case errors.Is(err, daemon.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, daemon.ErrInvalid):
		return http.StatusNotFound
	case errors.Is(err, daemon.ErrEmpty),
		errors.Is(err, format.ErrRejected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

//
func isFlagSet(req *http.Request, flag string) bool {
	arg, _ := getArg(req, flag)
	return arg == "true"
}

//
func getArg(req *http.Request, arg string) (string, error) {
	ret := req.URL.Query().Get(arg)
	if ret != "" {
		return url.QueryUnescape(ret)
	}
	return ret, nil
}

//
func getIntArg(req *http.Request, arg string, def int) (int, error) {
	val, err := getArg(req, arg)
	if err != nil {
		return -1, err
	}
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendStreamReply(r io.Reader, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, r); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing reply: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get("Content-Type"), "application/json")
}
