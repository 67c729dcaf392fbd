// Package weather downloads daily point weather from public web services
// and writes it as the engine's `.met` weather file.
//
// Two providers are supported: NASA POWER (global) and ORNL DAYMET (North
// America). Both return a Series that WriteMet turns into a met file.
package weather
