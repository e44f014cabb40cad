package backend

import (
	"context"
	"net/http"
)

// ListPayments returns the payment requests awaiting review.
func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	var out []Payment
	if err := c.getJSON(ctx, pathPayments, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Payment{}
	}
	return out, nil
}

// ListClients returns the client reference list.
func (c *Client) ListClients(ctx context.Context) ([]ClientRef, error) {
	var out []ClientRef
	if err := c.getJSON(ctx, pathClients, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMarkets returns the market reference list.
func (c *Client) ListMarkets(ctx context.Context) ([]Market, error) {
	var out []Market
	if err := c.getJSON(ctx, pathMarkets, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RejectPayment posts the payment snapshot and reason. The returned message is the
// server's confirmation text.
func (c *Client) RejectPayment(ctx context.Context, r RejectRequest) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, pathReject, r)
	if err != nil {
		return "", err
	}
	var res MessageResponse
	if err := c.do(ctx, req, &res); err != nil {
		return "", err
	}
	return res.Msg, nil
}
