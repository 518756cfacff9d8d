// Package services contains the business logic implementations of
// the driving ports. Services depend only on domain types and driven
// port interfaces, never on concrete adapters.
package services
