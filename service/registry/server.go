package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"skema/lib/compat"
	"skema/lib/schema"
	"skema/manager"
	"skema/registry"
)

type server struct {
	reg *registry.Registry
	mgr *manager.Manager
}

func (s server) setHandlers(router *mux.Router) {
	router.HandleFunc("/subjects", s.listSubjects).Methods("GET")
	router.HandleFunc("/subjects/{subject}", s.deleteSubject).Methods("DELETE")
	router.HandleFunc("/subjects/{subject}/versions", s.register).Methods("POST")
	router.HandleFunc("/subjects/{subject}/versions", s.listVersions).Methods("GET")
	router.HandleFunc("/subjects/{subject}/versions/{version}", s.getVersion).Methods("GET")
	router.HandleFunc("/compatibility/subjects/{subject}/versions/latest", s.testCompatibility).Methods("POST")
	router.HandleFunc("/config/{subject}", s.getConfig).Methods("GET")
	router.HandleFunc("/config/{subject}", s.setConfig).Methods("PUT")
	router.HandleFunc("/cache/stats", s.cacheStats).Methods("GET")
}

type versionResponse struct {
	Subject     string `json:"subject"`
	Version     int    `json:"version"`
	Fingerprint string `json:"fingerprint"`
	Schema      string `json:"schema"`
	Target      string `json:"target"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var incompatible *registry.IncompatibleError
	if errors.As(err, &incompatible) {
		resp.Issues = incompatible.Result.Issues
		resp.Warnings = incompatible.Result.Warnings
	}
	writeJson(w, status, resp)
}

func readSchema(req *http.Request) (schema.Node, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	return schema.FromJson(body)
}

func (s server) listSubjects(w http.ResponseWriter, req *http.Request) {
	writeJson(w, http.StatusOK, s.reg.Subjects())
}

func (s server) register(w http.ResponseWriter, req *http.Request) {
	subject := mux.Vars(req)["subject"]
	node, err := readSchema(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := s.reg.Register(subject, node)
	if err != nil {
		var incompatible *registry.IncompatibleError
		if errors.As(err, &incompatible) {
			writeError(w, http.StatusConflict, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	writeJson(w, http.StatusOK, versionResponse{
		Subject:     subject,
		Version:     v.Version,
		Fingerprint: v.Fingerprint,
		Schema:      schema.Canonical(v.Schema),
		Target:      v.Target.String(),
	})
}

func (s server) listVersions(w http.ResponseWriter, req *http.Request) {
	versions, err := s.reg.Versions(mux.Vars(req)["subject"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJson(w, http.StatusOK, versions)
}

func (s server) getVersion(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	subject := vars["subject"]
	var v registry.Version
	var err error
	if vars["version"] == "latest" {
		v, err = s.reg.Latest(subject)
	} else {
		var n int
		n, err = strconv.Atoi(vars["version"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		v, err = s.reg.Version(subject, n)
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJson(w, http.StatusOK, versionResponse{
		Subject:     subject,
		Version:     v.Version,
		Fingerprint: v.Fingerprint,
		Schema:      schema.Canonical(v.Schema),
		Target:      v.Target.String(),
	})
}

func (s server) deleteSubject(w http.ResponseWriter, req *http.Request) {
	if err := s.reg.Delete(mux.Vars(req)["subject"]); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type compatResponse struct {
	Compatible bool     `json:"compatible"`
	Policy     string   `json:"policy"`
	Issues     []string `json:"issues,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (s server) testCompatibility(w http.ResponseWriter, req *http.Request) {
	subject := mux.Vars(req)["subject"]
	node, err := readSchema(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.reg.Test(subject, node)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJson(w, http.StatusOK, compatResponse{
		Compatible: res.Compatible,
		Policy:     res.Policy.String(),
		Issues:     res.Issues,
		Warnings:   res.Warnings,
	})
}

type configBody struct {
	Compatibility string `json:"compatibility"`
}

func (s server) getConfig(w http.ResponseWriter, req *http.Request) {
	policy, err := s.reg.Policy(mux.Vars(req)["subject"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJson(w, http.StatusOK, configBody{Compatibility: policy.String()})
}

func (s server) setConfig(w http.ResponseWriter, req *http.Request) {
	var body configBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	policy, err := compat.ParsePolicy(body.Compatibility)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.reg.SetPolicy(mux.Vars(req)["subject"], policy)
	writeJson(w, http.StatusOK, configBody{Compatibility: policy.String()})
}

func (s server) cacheStats(w http.ResponseWriter, req *http.Request) {
	writeJson(w, http.StatusOK, s.mgr.CacheStats())
}
