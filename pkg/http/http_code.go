// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import "net/http"

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(4001, "Request parameter parsing failed")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthorizationEmpty   = failed(4404, "Authorization is empty")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")
	TokenFormatIncorrect = failed(4408, "Token format is incorrect")
	TokenRevoked         = failed(4409, "Token has been revoked")
	PluginTokenInvalid   = failed(4410, "Invalid plugins token")

	// BadRequest 400
	BadRequest          = failed(4000, "Bad request")
	ValidationFailed    = failed(4002, "Validation failed")
	UnknownAction       = failed(4003, "Invalid action specified")
	InvalidPluginSlug   = failed(4004, "Invalid plugin slug")
	NotZipFile          = failed(4005, "Only .zip files are allowed")
	DuplicateSiteURL    = failed(4006, "Brand Site already exists.")
	DuplicateGitHubRepo = failed(4007, "GitHub repository already in use by another site.")
	NoSitesSpecified    = failed(4008, "No sites specified")
	VersionRequired     = failed(4009, "Version is required")
	InvalidSiteType     = failed(4010, "Invalid site type")
	UploadExpired       = failed(4011, "Upload reference has expired")
	InvalidGitHubToken  = failed(4012, "Invalid GitHub token")
	InvalidCredentials  = failed(4013, "Invalid S3 credentials provided")
	UnknownEvent        = failed(4014, "Unknown plugin event")
	VersionNotOffered   = failed(4015, "Version is not one of the selectable releases")

	// Forbidden 403
	Forbidden = failed(4030, "Forbidden")

	// NotFound 404
	NotFound        = failed(4040, "Not found")
	NoPluginsFound  = failed(4041, "No plugins found")
	SiteNotFound    = failed(4042, "Site not found")
	TicketNotFound  = failed(4043, "Dispatch ticket not found")
	UploadNotExists = failed(4044, "Upload not found")

	// Conflict 409
	DuplicateDispatch = failed(4091, "An identical dispatch is already in flight")

	// PreconditionFailed 412
	GitHubTokenMissing   = failed(4121, "GitHub token is not configured")
	StorageNotConfigured = failed(4122, "S3 credentials are not configured")
	SiteTypeUnset        = failed(4123, "Site type is not configured")

	InternalError     = failed(5000, "Internal error, please contact the administrator")
	RemoteUnreachable = failed(5020, "Remote service unreachable")
	// ServiceUnavailable 503
	ServiceUnavailable = failed(5030, "Service is shutting down")
)

var (
	Success = success(200, "Request Success")
)

// StatusOf maps a business code onto the HTTP status it is written with.
func StatusOf(code int) int {
	switch {
	case code < 1000:
		if http.StatusText(code) != "" {
			return code
		}
		return http.StatusInternalServerError
	case code >= 4400 && code < 4500:
		return http.StatusUnauthorized
	case code >= 4030 && code < 4040:
		return http.StatusForbidden
	case code >= 4040 && code < 4050:
		return http.StatusNotFound
	case code >= 4090 && code < 4100:
		return http.StatusConflict
	case code >= 4120 && code < 4130:
		return http.StatusPreconditionFailed
	case code >= 4000 && code < 5000:
		return http.StatusBadRequest
	case code >= 5020 && code < 5030:
		return http.StatusBadGateway
	case code >= 5030 && code < 5040:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// success 构造函数
func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
