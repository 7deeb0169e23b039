package core_test

const modulePath = "github.com/leapstack-labs/lpi"
