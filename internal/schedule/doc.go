// Package schedule implements the availability core: resolving a calendar
// date into an absolute work window, testing candidate intervals against
// busy calendar time, and generating the list of bookable start times.
//
// Everything in this package is a pure function of its inputs. Fetching busy
// intervals and creating events belongs to the calendar package; HTTP
// concerns belong to the server package.
package schedule
