/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration object under the "_c:<pkg>"
key. The object is loaded from the "conf" section of the genesis file and
validated before it is saved.
*/
package gconf
