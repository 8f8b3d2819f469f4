// Package docs serves the OpenAPI description of the GenZip API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Register a company and its admin", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Email or mobile taken"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in as admin or HR", "responses": {"200": {"description": "Token pair"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Exchange a refresh token", "responses": {"200": {"description": "Token pair"}, "401": {"description": "Invalid token"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Revoke the current tokens", "responses": {"200": {"description": "OK"}}}},
        "/auth/password": {"post": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Change password", "responses": {"200": {"description": "OK"}}}},
        "/me": {"get": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Current user", "responses": {"200": {"description": "User"}}}},
        "/plans": {"get": {"tags": ["subscriptions"], "summary": "Subscription plan catalog", "responses": {"200": {"description": "Plans"}}}},
        "/jobs": {
            "get": {"tags": ["jobs"], "security": [{"BearerAuth": []}], "summary": "List job postings", "responses": {"200": {"description": "Jobs"}}},
            "post": {"tags": ["jobs"], "security": [{"BearerAuth": []}], "summary": "Create a job posting", "responses": {"201": {"description": "Created"}}}
        },
        "/candidates": {
            "get": {"tags": ["candidates"], "security": [{"BearerAuth": []}], "summary": "List candidates", "responses": {"200": {"description": "Candidates"}}},
            "post": {"tags": ["candidates"], "security": [{"BearerAuth": []}], "summary": "Create a candidate", "responses": {"201": {"description": "Created"}}}
        },
        "/interviewers": {
            "get": {"tags": ["interviewers"], "security": [{"BearerAuth": []}], "summary": "List interviewers", "responses": {"200": {"description": "Interviewers"}}},
            "post": {"tags": ["interviewers"], "security": [{"BearerAuth": []}], "summary": "Create an interviewer", "responses": {"201": {"description": "Created"}}}
        },
        "/interviews": {
            "get": {"tags": ["interviews"], "security": [{"BearerAuth": []}], "summary": "List interviews", "responses": {"200": {"description": "Interviews"}}},
            "post": {"tags": ["interviews"], "security": [{"BearerAuth": []}], "summary": "Schedule an interview", "responses": {"201": {"description": "Paid with a credit"}, "202": {"description": "Awaiting payment"}, "409": {"description": "Duplicate"}}}
        },
        "/interviews/{id}/cancel": {"post": {"tags": ["interviews"], "security": [{"BearerAuth": []}], "summary": "Cancel an interview", "responses": {"200": {"description": "Cancelled"}, "409": {"description": "Locked"}}}},
        "/interviews/{id}/pay-with-credit": {"post": {"tags": ["interviews"], "security": [{"BearerAuth": []}], "summary": "Settle an interview with a credit", "responses": {"200": {"description": "Paid"}, "402": {"description": "No credits"}}}},
        "/credits": {"get": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Credit balance", "responses": {"200": {"description": "Summary"}}}},
        "/payments/checkout-session": {"post": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Open a checkout for an interview", "responses": {"200": {"description": "Session"}, "502": {"description": "Gateway failure"}}}},
        "/payments/subscription-session": {"post": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Open a checkout for a plan", "responses": {"200": {"description": "Session"}}}},
        "/payments/confirm": {"post": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Confirm a completed checkout", "responses": {"200": {"description": "Settled"}}}},
        "/admin/dashboard": {"get": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "Company dashboard", "responses": {"200": {"description": "Dashboard"}}}},
        "/admin/hrs": {
            "get": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "List HR users", "responses": {"200": {"description": "HRs"}}},
            "post": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "Create an HR user", "responses": {"201": {"description": "Created"}}}
        },
        "/admin/settings": {
            "get": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "Company settings", "responses": {"200": {"description": "Company"}}},
            "put": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "Update company settings", "responses": {"200": {"description": "Company"}}}
        },
        "/admin/payments": {"get": {"tags": ["admin"], "security": [{"BearerAuth": []}], "summary": "Payment history", "responses": {"200": {"description": "Ledger"}}}},
        "/admin/payments/{id}/receipt": {"get": {"tags": ["admin"], "security": [{"BearerAuth": []}], "produces": ["application/pdf"], "summary": "Download a receipt", "responses": {"200": {"description": "PDF"}}}},
        "/agents/otp": {"post": {"tags": ["agents"], "summary": "Request a signup OTP", "responses": {"200": {"description": "Sent"}, "429": {"description": "Too many OTP requests"}}}},
        "/agents/signup": {"post": {"tags": ["agents"], "consumes": ["multipart/form-data"], "summary": "Register a field agent", "responses": {"201": {"description": "Created"}}}},
        "/agents/login": {"post": {"tags": ["agents"], "summary": "Log in as a field agent", "responses": {"200": {"description": "Token pair"}}}},
        "/agent/interviews/available": {"get": {"tags": ["agents"], "security": [{"BearerAuth": []}], "summary": "Interviews open for reservation", "responses": {"200": {"description": "Interviews"}}}},
        "/agent/interviews/{id}/accept": {"post": {"tags": ["agents"], "security": [{"BearerAuth": []}], "summary": "Accept a reserved interview", "responses": {"200": {"description": "Accepted"}, "409": {"description": "Conflict"}}}},
        "/agent/interviews/{id}/video": {"post": {"tags": ["agents"], "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "summary": "Submit the interview video", "responses": {"200": {"description": "Completed"}}}},
        "/public/interviews/{id}/location": {"post": {"tags": ["public"], "summary": "Candidate shares their location", "responses": {"200": {"description": "Saved"}, "429": {"description": "Rate limited"}}}},
        "/public/enquiries": {"post": {"tags": ["public"], "summary": "Submit a sales enquiry", "responses": {"201": {"description": "Created"}}}},
        "/webhooks/stripe": {"post": {"tags": ["webhooks"], "summary": "Stripe events", "responses": {"200": {"description": "Processed"}, "401": {"description": "Bad signature"}}}},
        "/webhooks/razorpay": {"post": {"tags": ["webhooks"], "summary": "Razorpay events", "responses": {"200": {"description": "Processed"}, "401": {"description": "Bad signature"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "GenZip API",
	Description:      "Interview verification marketplace: companies schedule interviews, field agents verify them on site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
