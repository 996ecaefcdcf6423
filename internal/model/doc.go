// Package model defines the accounts, recurring items, forecast and payoff
// types shared across cashcast.
package model
