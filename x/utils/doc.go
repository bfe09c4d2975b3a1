/*
Package utils contains decorators shared by every handler stack: logging
of each transaction, panic recovery and savepoints that roll back the
state changes of a failed call.
*/
package utils
