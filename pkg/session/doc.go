/*
Package session gives every customer of a shared host an independent
ordering session.

The Manager creates sessions with random IDs, keeps them in a Store and
serializes actions per session with reference-counted locks, so two
requests for the same customer never interleave while different customers
proceed in parallel. Idle sessions are removed by Sweep.
*/
package session
