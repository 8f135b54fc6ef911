package dto

import "smartcity-be/internal/model"

type AlertResponse struct {
	model.Alert
	Accent string `json:"accent"`
}

type NotificationListResponse struct {
	Data   []AlertResponse `json:"data"`
	Total  int             `json:"total"`
	Unread int             `json:"unread"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

func ToAlertResponses(alerts []model.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{Alert: a, Accent: a.Severity.Accent()}
	}
	return out
}
