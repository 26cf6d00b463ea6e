// Package handler contains the HTTP surface: decode, validate, delegate to
// a service, render the envelope. No business rules live here.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/api/middleware"
	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
)

var validate = validator.New()

// decode parses the JSON body and runs struct validation, writing the error
// response itself. Returns false when the request was rejected.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			errors := make(map[string]string)
			for _, e := range validationErrors {
				field := e.Field()
				tag := e.Tag()
				switch tag {
				case "required":
					errors[field] = "field is required"
				case "email":
					errors[field] = "invalid email format"
				case "min":
					errors[field] = "must be at least " + e.Param() + " characters"
				case "max":
					errors[field] = "must be at most " + e.Param() + " characters"
				case "oneof":
					errors[field] = "must be one of: " + e.Param()
				default:
					errors[field] = "validation failed on " + tag
				}
			}
			response.BadRequest(w, errors)
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

// actor pulls the authenticated actor from the request, writing 401 itself
// when the middleware never ran.
func actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
	}
	return a, ok
}

// urlID parses an object id from a chi URL parameter, writing 400 itself.
func urlID(w http.ResponseWriter, r *http.Request, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		response.BadRequest(w, "invalid "+param)
		return primitive.NilObjectID, false
	}
	return id, true
}
