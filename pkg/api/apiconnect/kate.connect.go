// Package apiconnect wires the kate.v1 services to Connect handlers and clients.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	api "github.com/kate-app/backend/pkg/api"
)

const (
	// SettlementServiceName is the fully-qualified name of the SettlementService service.
	SettlementServiceName = "kate.v1.SettlementService"
	// EventServiceName is the fully-qualified name of the EventService service.
	EventServiceName = "kate.v1.EventService"
	// NotificationServiceName is the fully-qualified name of the NotificationService service.
	NotificationServiceName = "kate.v1.NotificationService"
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "kate.v1.AuthService"
)

// Procedure paths, "/" + service name + "/" + method.
const (
	SettlementServiceGetEventSettlementProcedure = "/kate.v1.SettlementService/GetEventSettlement"
	SettlementServiceSetTransferPaidProcedure    = "/kate.v1.SettlementService/SetTransferPaid"

	EventServiceCreateEventProcedure                 = "/kate.v1.EventService/CreateEvent"
	EventServiceGetEventProcedure                    = "/kate.v1.EventService/GetEvent"
	EventServiceUpdatePaymentDetailsProcedure        = "/kate.v1.EventService/UpdatePaymentDetails"
	EventServiceAddParticipantProcedure              = "/kate.v1.EventService/AddParticipant"
	EventServiceListParticipantsProcedure            = "/kate.v1.EventService/ListParticipants"
	EventServiceRemoveParticipantProcedure           = "/kate.v1.EventService/RemoveParticipant"
	EventServiceAddProcurementProcedure              = "/kate.v1.EventService/AddProcurement"
	EventServiceUpdateProcurementProcedure           = "/kate.v1.EventService/UpdateProcurement"
	EventServiceGetProcurementProcedure              = "/kate.v1.EventService/GetProcurement"
	EventServiceListProcurementsProcedure            = "/kate.v1.EventService/ListProcurements"
	EventServiceListContributedProcurementsProcedure = "/kate.v1.EventService/ListContributedProcurements"
	EventServiceListResponsibleProcurementsProcedure = "/kate.v1.EventService/ListResponsibleProcurements"
	EventServiceGetInviteLinkProcedure               = "/kate.v1.EventService/GetInviteLink"

	NotificationServiceSendToParticipantProcedure = "/kate.v1.NotificationService/SendToParticipant"

	AuthServiceLoginProcedure          = "/kate.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/kate.v1.AuthService/GetCurrentUser"
)

// IsProcedure reports whether path addresses one of the kate.v1 services.
func IsProcedure(path string) bool {
	return strings.HasPrefix(path, "/kate.v1.")
}

// unary builds a handler that speaks the JSON codec.
func unary[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) *connect.Handler {
	return connect.NewUnaryHandler(procedure, fn, append([]connect.HandlerOption{connect.WithCodec(api.Codec)}, opts...)...)
}

// route dispatches by path the way generated Connect handlers do.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](
		httpClient,
		strings.TrimRight(baseURL, "/")+procedure,
		append([]connect.ClientOption{connect.WithCodec(api.Codec)}, opts...)...,
	)
}

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	GetEventSettlement(context.Context, *connect.Request[api.GetEventSettlementRequest]) (*connect.Response[api.GetEventSettlementResponse], error)
	SetTransferPaid(context.Context, *connect.Request[api.SetTransferPaidRequest]) (*connect.Response[api.SetTransferPaidResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + SettlementServiceName + "/", route(map[string]http.Handler{
		SettlementServiceGetEventSettlementProcedure: unary(SettlementServiceGetEventSettlementProcedure, svc.GetEventSettlement, opts),
		SettlementServiceSetTransferPaidProcedure:    unary(SettlementServiceSetTransferPaidProcedure, svc.SetTransferPaid, opts),
	})
}

// SettlementServiceClient is a client for the kate.v1.SettlementService service.
type SettlementServiceClient struct {
	getEventSettlement *connect.Client[api.GetEventSettlementRequest, api.GetEventSettlementResponse]
	setTransferPaid    *connect.Client[api.SetTransferPaidRequest, api.SetTransferPaidResponse]
}

// NewSettlementServiceClient constructs a client for the kate.v1.SettlementService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		getEventSettlement: newClient[api.GetEventSettlementRequest, api.GetEventSettlementResponse](httpClient, baseURL, SettlementServiceGetEventSettlementProcedure, opts),
		setTransferPaid:    newClient[api.SetTransferPaidRequest, api.SetTransferPaidResponse](httpClient, baseURL, SettlementServiceSetTransferPaidProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetEventSettlement(ctx context.Context, req *connect.Request[api.GetEventSettlementRequest]) (*connect.Response[api.GetEventSettlementResponse], error) {
	return c.getEventSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) SetTransferPaid(ctx context.Context, req *connect.Request[api.SetTransferPaidRequest]) (*connect.Response[api.SetTransferPaidResponse], error) {
	return c.setTransferPaid.CallUnary(ctx, req)
}

// EventServiceHandler is implemented by the event service.
type EventServiceHandler interface {
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	GetEvent(context.Context, *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error)
	UpdatePaymentDetails(context.Context, *connect.Request[api.UpdatePaymentDetailsRequest]) (*connect.Response[api.UpdatePaymentDetailsResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	AddProcurement(context.Context, *connect.Request[api.AddProcurementRequest]) (*connect.Response[api.AddProcurementResponse], error)
	UpdateProcurement(context.Context, *connect.Request[api.UpdateProcurementRequest]) (*connect.Response[api.UpdateProcurementResponse], error)
	GetProcurement(context.Context, *connect.Request[api.GetProcurementRequest]) (*connect.Response[api.GetProcurementResponse], error)
	ListProcurements(context.Context, *connect.Request[api.ListProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error)
	ListContributedProcurements(context.Context, *connect.Request[api.ListContributedProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error)
	ListResponsibleProcurements(context.Context, *connect.Request[api.ListResponsibleProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error)
	GetInviteLink(context.Context, *connect.Request[api.GetInviteLinkRequest]) (*connect.Response[api.GetInviteLinkResponse], error)
}

// NewEventServiceHandler builds an HTTP handler from the service implementation.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + EventServiceName + "/", route(map[string]http.Handler{
		EventServiceCreateEventProcedure:                 unary(EventServiceCreateEventProcedure, svc.CreateEvent, opts),
		EventServiceGetEventProcedure:                    unary(EventServiceGetEventProcedure, svc.GetEvent, opts),
		EventServiceUpdatePaymentDetailsProcedure:        unary(EventServiceUpdatePaymentDetailsProcedure, svc.UpdatePaymentDetails, opts),
		EventServiceAddParticipantProcedure:              unary(EventServiceAddParticipantProcedure, svc.AddParticipant, opts),
		EventServiceListParticipantsProcedure:            unary(EventServiceListParticipantsProcedure, svc.ListParticipants, opts),
		EventServiceRemoveParticipantProcedure:           unary(EventServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts),
		EventServiceAddProcurementProcedure:              unary(EventServiceAddProcurementProcedure, svc.AddProcurement, opts),
		EventServiceUpdateProcurementProcedure:           unary(EventServiceUpdateProcurementProcedure, svc.UpdateProcurement, opts),
		EventServiceGetProcurementProcedure:              unary(EventServiceGetProcurementProcedure, svc.GetProcurement, opts),
		EventServiceListProcurementsProcedure:            unary(EventServiceListProcurementsProcedure, svc.ListProcurements, opts),
		EventServiceListContributedProcurementsProcedure: unary(EventServiceListContributedProcurementsProcedure, svc.ListContributedProcurements, opts),
		EventServiceListResponsibleProcurementsProcedure: unary(EventServiceListResponsibleProcurementsProcedure, svc.ListResponsibleProcurements, opts),
		EventServiceGetInviteLinkProcedure:               unary(EventServiceGetInviteLinkProcedure, svc.GetInviteLink, opts),
	})
}

// EventServiceClient is a client for the kate.v1.EventService service.
type EventServiceClient struct {
	createEvent                 *connect.Client[api.CreateEventRequest, api.CreateEventResponse]
	getEvent                    *connect.Client[api.GetEventRequest, api.GetEventResponse]
	updatePaymentDetails        *connect.Client[api.UpdatePaymentDetailsRequest, api.UpdatePaymentDetailsResponse]
	addParticipant              *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	listParticipants            *connect.Client[api.ListParticipantsRequest, api.ListParticipantsResponse]
	removeParticipant           *connect.Client[api.RemoveParticipantRequest, api.RemoveParticipantResponse]
	addProcurement              *connect.Client[api.AddProcurementRequest, api.AddProcurementResponse]
	updateProcurement           *connect.Client[api.UpdateProcurementRequest, api.UpdateProcurementResponse]
	getProcurement              *connect.Client[api.GetProcurementRequest, api.GetProcurementResponse]
	listProcurements            *connect.Client[api.ListProcurementsRequest, api.ListProcurementsResponse]
	listContributedProcurements *connect.Client[api.ListContributedProcurementsRequest, api.ListProcurementsResponse]
	listResponsibleProcurements *connect.Client[api.ListResponsibleProcurementsRequest, api.ListProcurementsResponse]
	getInviteLink               *connect.Client[api.GetInviteLinkRequest, api.GetInviteLinkResponse]
}

// NewEventServiceClient constructs a client for the kate.v1.EventService service.
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventServiceClient {
	return &EventServiceClient{
		createEvent:                 newClient[api.CreateEventRequest, api.CreateEventResponse](httpClient, baseURL, EventServiceCreateEventProcedure, opts),
		getEvent:                    newClient[api.GetEventRequest, api.GetEventResponse](httpClient, baseURL, EventServiceGetEventProcedure, opts),
		updatePaymentDetails:        newClient[api.UpdatePaymentDetailsRequest, api.UpdatePaymentDetailsResponse](httpClient, baseURL, EventServiceUpdatePaymentDetailsProcedure, opts),
		addParticipant:              newClient[api.AddParticipantRequest, api.AddParticipantResponse](httpClient, baseURL, EventServiceAddParticipantProcedure, opts),
		listParticipants:            newClient[api.ListParticipantsRequest, api.ListParticipantsResponse](httpClient, baseURL, EventServiceListParticipantsProcedure, opts),
		removeParticipant:           newClient[api.RemoveParticipantRequest, api.RemoveParticipantResponse](httpClient, baseURL, EventServiceRemoveParticipantProcedure, opts),
		addProcurement:              newClient[api.AddProcurementRequest, api.AddProcurementResponse](httpClient, baseURL, EventServiceAddProcurementProcedure, opts),
		updateProcurement:           newClient[api.UpdateProcurementRequest, api.UpdateProcurementResponse](httpClient, baseURL, EventServiceUpdateProcurementProcedure, opts),
		getProcurement:              newClient[api.GetProcurementRequest, api.GetProcurementResponse](httpClient, baseURL, EventServiceGetProcurementProcedure, opts),
		listProcurements:            newClient[api.ListProcurementsRequest, api.ListProcurementsResponse](httpClient, baseURL, EventServiceListProcurementsProcedure, opts),
		listContributedProcurements: newClient[api.ListContributedProcurementsRequest, api.ListProcurementsResponse](httpClient, baseURL, EventServiceListContributedProcurementsProcedure, opts),
		listResponsibleProcurements: newClient[api.ListResponsibleProcurementsRequest, api.ListProcurementsResponse](httpClient, baseURL, EventServiceListResponsibleProcurementsProcedure, opts),
		getInviteLink:               newClient[api.GetInviteLinkRequest, api.GetInviteLinkResponse](httpClient, baseURL, EventServiceGetInviteLinkProcedure, opts),
	}
}

func (c *EventServiceClient) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	return c.getEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdatePaymentDetails(ctx context.Context, req *connect.Request[api.UpdatePaymentDetailsRequest]) (*connect.Response[api.UpdatePaymentDetailsResponse], error) {
	return c.updatePaymentDetails.CallUnary(ctx, req)
}

func (c *EventServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *EventServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *EventServiceClient) AddProcurement(ctx context.Context, req *connect.Request[api.AddProcurementRequest]) (*connect.Response[api.AddProcurementResponse], error) {
	return c.addProcurement.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateProcurement(ctx context.Context, req *connect.Request[api.UpdateProcurementRequest]) (*connect.Response[api.UpdateProcurementResponse], error) {
	return c.updateProcurement.CallUnary(ctx, req)
}

func (c *EventServiceClient) GetProcurement(ctx context.Context, req *connect.Request[api.GetProcurementRequest]) (*connect.Response[api.GetProcurementResponse], error) {
	return c.getProcurement.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListProcurements(ctx context.Context, req *connect.Request[api.ListProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	return c.listProcurements.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListContributedProcurements(ctx context.Context, req *connect.Request[api.ListContributedProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	return c.listContributedProcurements.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListResponsibleProcurements(ctx context.Context, req *connect.Request[api.ListResponsibleProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	return c.listResponsibleProcurements.CallUnary(ctx, req)
}

func (c *EventServiceClient) GetInviteLink(ctx context.Context, req *connect.Request[api.GetInviteLinkRequest]) (*connect.Response[api.GetInviteLinkResponse], error) {
	return c.getInviteLink.CallUnary(ctx, req)
}

// NotificationServiceHandler is implemented by the notification service.
type NotificationServiceHandler interface {
	SendToParticipant(context.Context, *connect.Request[api.SendToParticipantRequest]) (*connect.Response[api.SendToParticipantResponse], error)
}

// NewNotificationServiceHandler builds an HTTP handler from the service implementation.
func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + NotificationServiceName + "/", route(map[string]http.Handler{
		NotificationServiceSendToParticipantProcedure: unary(NotificationServiceSendToParticipantProcedure, svc.SendToParticipant, opts),
	})
}

// NotificationServiceClient is a client for the kate.v1.NotificationService service.
type NotificationServiceClient struct {
	sendToParticipant *connect.Client[api.SendToParticipantRequest, api.SendToParticipantResponse]
}

// NewNotificationServiceClient constructs a client for the kate.v1.NotificationService service.
func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NotificationServiceClient {
	return &NotificationServiceClient{
		sendToParticipant: newClient[api.SendToParticipantRequest, api.SendToParticipantResponse](httpClient, baseURL, NotificationServiceSendToParticipantProcedure, opts),
	}
}

func (c *NotificationServiceClient) SendToParticipant(ctx context.Context, req *connect.Request[api.SendToParticipantRequest]) (*connect.Response[api.SendToParticipantResponse], error) {
	return c.sendToParticipant.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + AuthServiceName + "/", route(map[string]http.Handler{
		AuthServiceLoginProcedure:          unary(AuthServiceLoginProcedure, svc.Login, opts),
		AuthServiceGetCurrentUserProcedure: unary(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts),
	})
}

// AuthServiceClient is a client for the kate.v1.AuthService service.
type AuthServiceClient struct {
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the kate.v1.AuthService service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		login:          newClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
