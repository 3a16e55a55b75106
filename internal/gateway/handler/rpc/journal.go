package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"sanogenic/internal/journal"
)

const (
	JournalServiceName = "sanogenic.v1.JournalService"

	JournalServiceListEntriesProcedure = "/" + JournalServiceName + "/ListEntries"
	JournalServiceGetEntryProcedure    = "/" + JournalServiceName + "/GetEntry"
	JournalServiceDeleteEntryProcedure = "/" + JournalServiceName + "/DeleteEntry"
)

type ListEntriesRequest struct {
	Limit int `json:"limit"`
}

type ListEntriesResponse struct {
	Entries []journal.Entry `json:"entries"`
}

type GetEntryRequest struct {
	ID string `json:"id"`
}

type DeleteEntryRequest struct {
	ID string `json:"id"`
}

type DeleteEntryResponse struct {
	Deleted bool `json:"deleted"`
}

type JournalHandler struct {
	store journal.Store
}

func NewJournalHandler(store journal.Store) *JournalHandler {
	return &JournalHandler{store: store}
}

func (h *JournalHandler) ListEntries(ctx context.Context, req *connect.Request[ListEntriesRequest]) (*connect.Response[ListEntriesResponse], error) {
	entries, err := h.store.List(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toJournalError(err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return connect.NewResponse(&ListEntriesResponse{Entries: entries}), nil
}

func (h *JournalHandler) GetEntry(ctx context.Context, req *connect.Request[GetEntryRequest]) (*connect.Response[journal.Entry], error) {
	id := strings.TrimSpace(req.Msg.ID)
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id is required"))
	}
	e, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, toJournalError(err)
	}
	return connect.NewResponse(&e), nil
}

func (h *JournalHandler) DeleteEntry(ctx context.Context, req *connect.Request[DeleteEntryRequest]) (*connect.Response[DeleteEntryResponse], error) {
	id := strings.TrimSpace(req.Msg.ID)
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id is required"))
	}
	if err := h.store.Delete(ctx, id); err != nil {
		return nil, toJournalError(err)
	}
	return connect.NewResponse(&DeleteEntryResponse{Deleted: true}), nil
}

// NewJournalServiceHandler returns the mount path and handler for the
// journal procedures.
func NewJournalServiceHandler(h *JournalHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(CodecOptions(), opts...)
	mux := http.NewServeMux()
	mux.Handle(JournalServiceListEntriesProcedure, connect.NewUnaryHandler(
		JournalServiceListEntriesProcedure, h.ListEntries, opts...))
	mux.Handle(JournalServiceGetEntryProcedure, connect.NewUnaryHandler(
		JournalServiceGetEntryProcedure, h.GetEntry, opts...))
	mux.Handle(JournalServiceDeleteEntryProcedure, connect.NewUnaryHandler(
		JournalServiceDeleteEntryProcedure, h.DeleteEntry, opts...))
	return "/" + JournalServiceName + "/", mux
}
