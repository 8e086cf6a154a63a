package handlers

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, ph *ProxyHandler) {
	r.HandleFunc("/api/ml/salary/predict", ph.HandleSalaryPredict).Methods("POST")
	r.HandleFunc("/api/ml/salary/metadata", ph.HandleSalaryMetadata).Methods("GET")
	r.HandleFunc("/api/ml/skill-gap/analyze", ph.HandleSkillGapAnalyze).Methods("POST")
	r.HandleFunc("/api/ml/skill-gap/roles", ph.HandleSkillGapRoles).Methods("GET")
	r.HandleFunc("/api/ml/clusters", ph.HandleClusters).Methods("GET")
	r.HandleFunc("/api/ml/clusters/adjacent/{slug}", ph.HandleAdjacentRoles).Methods("GET")
	r.HandleFunc("/api/ml/health", ph.HandleHealth).Methods("GET")
	r.HandleFunc("/admin/stats", ph.HandleStats).Methods("GET")
}
