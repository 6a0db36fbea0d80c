package server

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonyy2018/rresume/internal/version"
	"github.com/jasonyy2018/rresume/pkg/ai"
	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/importer"
)

type parseRequest struct {
	ai.Credentials
	File      ai.FilePayload `json:"file"`
	MediaType ai.MediaType   `json:"mediaType"`
}

type improveRequest struct {
	ai.Credentials
	ai.ImproveInput
}

type importRequest struct {
	Type        importer.Type   `json:"type"`
	File        ai.FilePayload  `json:"file"`
	MediaType   ai.MediaType    `json:"mediaType"`
	Credentials *ai.Credentials `json:"credentials"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": version.String()})
}

func (s *Server) testConnection(c *fiber.Ctx) error {
	var req ai.Credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	ok, err := s.svc.TestConnection(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(ok)
}

func (s *Server) parsePDF(c *fiber.Ctx) error {
	var req parseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := s.svc.ParseDocument(c.UserContext(), req.Credentials, req.File, ai.MediaPDF)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *Server) parseDOCX(c *fiber.Ctx) error {
	var req parseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.MediaType != ai.MediaDOC && req.MediaType != ai.MediaDOCX {
		return aierr.BadRequestf("mediaType must be %q or %q", ai.MediaDOC, ai.MediaDOCX)
	}
	d, err := s.svc.ParseDocument(c.UserContext(), req.Credentials, req.File, req.MediaType)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *Server) improveContent(c *fiber.Ctx) error {
	var req improveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := s.svc.ImproveText(c.UserContext(), req.Credentials, req.ImproveInput)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (s *Server) importResume(c *fiber.Ctx) error {
	var req importRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	typ, err := importer.ParseType(string(req.Type))
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(req.File.Data)
	if err != nil {
		return &aierr.Error{Kind: aierr.BadRequest, Message: "file data must be base64 encoded", Cause: err}
	}
	d, err := s.svc.Import(c.UserContext(), ai.ImportRequest{
		Type:        typ,
		Name:        req.File.Name,
		Data:        data,
		MediaType:   req.MediaType,
		Credentials: req.Credentials,
	})
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return &aierr.Error{Kind: aierr.BadRequest, Message: "invalid payload: " + err.Error(), Cause: err}
	}
	return nil
}

// errorHandler renders every failure as {code, message, data}.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := aierr.InternalFailure.String()
		if fe.Code < fiber.StatusInternalServerError {
			code = aierr.BadRequest.String()
		}
		return c.Status(fe.Code).JSON(errorResponse{Code: code, Message: fe.Message})
	}

	e := aierr.Translate(err)
	resp := errorResponse{Code: e.Kind.String(), Message: e.Message}
	if issues, ok := e.Detail["issues"]; ok {
		resp.Data = issues
	}
	return c.Status(aierr.HTTPStatus(e)).JSON(resp)
}
