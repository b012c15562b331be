package model

// Client is a customer of the business.
type Client struct {
	ID   string
	Name string // resolved display name, NoRef when none was given
}

// Project groups invoices under a client engagement.
type Project struct {
	ID     string
	Name   string
	Client Ref
}
